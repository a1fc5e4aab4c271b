package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/aleister1102/ingestor/internal/config"
)

const collisionTimestampLayout = "20060102150405"

// relocate moves path into the output tree of folder, mirroring its
// directory relative to folder.InPath. It returns the final location.
func (p *Pipeline) relocate(path string, folder config.WatchFolderConfig) (string, error) {
	dir, err := destinationDir(path, folder)
	if err != nil {
		return "", err
	}

	if err := p.files.EnsureDirectory(dir, filemanager.DirPerm); err != nil {
		return "", err
	}

	dest := uniqueDestination(dir, filepath.Base(path), p.now(), p.files.FileExists)
	if err := p.files.MoveFile(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// destinationDir maps the directory of path below folder.InPath onto
// folder.OutPath.
func destinationDir(path string, folder config.WatchFolderConfig) (string, error) {
	rel, err := filepath.Rel(folder.InPath, filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("resolving %s against %s: %w", path, folder.InPath, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside input directory %s", path, folder.InPath)
	}
	return filepath.Join(folder.OutPath, rel), nil
}

// uniqueDestination returns dir/name, or stem_YYYYMMDDHHMMSS.ext when that
// is taken. A -N counter follows the timestamp if the stamped name exists
// too.
func uniqueDestination(dir, name string, now time.Time, exists func(string) bool) string {
	candidate := filepath.Join(dir, name)
	if !exists(candidate) {
		return candidate
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stamped := stem + "_" + now.Format(collisionTimestampLayout)

	candidate = filepath.Join(dir, stamped+ext)
	for n := 1; exists(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stamped, n, ext))
	}
	return candidate
}
