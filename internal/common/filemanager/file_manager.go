package filemanager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/aleister1102/ingestor/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"gopkg.in/djherbis/times.v1"
)

// Directory modes applied by the permission hook.
const (
	DirPerm        fs.FileMode = 0775
	SharedDirPerm  fs.FileMode = 0777
	MarkerFileName             = ".permissions_marker"
	markerContent              = "This file is used to maintain proper folder permissions"
)

// FileInfo contains metadata about a file
type FileInfo struct {
	Path        string      // Full file path
	Name        string      // File name only
	Size        int64       // File size in bytes
	IsDir       bool        // Whether it's a directory
	ModTime     time.Time   // Last modification time
	CreatedAt   time.Time   // Birth time when the platform reports one, else ModTime
	Permissions fs.FileMode // File permissions
}

// FileManager provides directory and file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileInfo returns information about a file
func (fm *FileManager) GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorwrapper.WrapError(errorwrapper.ErrNotFound, fmt.Sprintf("file not found: %s", path))
		}
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to get file info for: %s", path))
	}

	info := &FileInfo{
		Path:        path,
		Name:        stat.Name(),
		Size:        stat.Size(),
		IsDir:       stat.IsDir(),
		ModTime:     stat.ModTime(),
		CreatedAt:   stat.ModTime(),
		Permissions: stat.Mode(),
	}

	if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
		info.CreatedAt = ts.BirthTime()
	}

	return info, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist.
// Every directory it creates gets the permission hook applied; hook failures
// are logged only.
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	if fm.FileExists(path) {
		info, err := fm.GetFileInfo(path)
		if err != nil {
			return errorwrapper.WrapError(err, "failed to check directory: "+path)
		}
		if !info.IsDir {
			return errorwrapper.NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	missing := fm.missingDirectories(path)
	if err := os.MkdirAll(path, perm); err != nil {
		return errorwrapper.WrapError(err, "failed to create directory: "+path)
	}
	fm.logger.Info().Str("path", path).Int("created", len(missing)).Msg("Created directory")

	for _, dir := range missing {
		if err := AdjustPermissions(dir, perm); err != nil {
			fm.logger.Warn().Err(err).Str("path", dir).Msg("Unable to set directory permissions")
		}
	}
	return nil
}

// missingDirectories lists path and each of its ancestors that do not exist
// yet, outermost first.
func (fm *FileManager) missingDirectories(path string) []string {
	var missing []string
	for dir := filepath.Clean(path); !fm.FileExists(dir); {
		missing = append(missing, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	slices.Reverse(missing)
	return missing
}

// WriteMarker leaves a small marker file in dir unless one is already there.
// It returns true when a new marker was written.
func (fm *FileManager) WriteMarker(dir string) (bool, error) {
	path := filepath.Join(dir, MarkerFileName)
	if fm.FileExists(path) {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(markerContent), 0644); err != nil {
		return false, errorwrapper.WrapError(err, "failed to write permissions marker: "+path)
	}
	fm.logger.Info().Str("path", dir).Msg("Created permissions marker file")
	return true, nil
}

// ReadFile reads a whole file, refusing files larger than maxSize bytes
// when maxSize is positive.
func (fm *FileManager) ReadFile(path string, maxSize int64) ([]byte, error) {
	info, err := fm.GetFileInfo(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, errorwrapper.NewValidationError("path", path, "is a directory")
	}
	if maxSize > 0 && info.Size > maxSize {
		return nil, errorwrapper.NewValidationError("path", path, fmt.Sprintf("file size %d exceeds limit %d", info.Size, maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}
