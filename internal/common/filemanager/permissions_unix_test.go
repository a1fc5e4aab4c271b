//go:build linux || darwin || freebsd || netbsd || openbsd

package filemanager

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManager_EnsureDirectory_AdjustsEveryCreatedLevel(t *testing.T) {
	old := syscall.Umask(0022)
	defer syscall.Umask(old)

	fm := NewFileManager(zerolog.Nop())
	root := t.TempDir()
	require.NoError(t, os.Chmod(root, 0700))

	path := filepath.Join(root, "a", "b", "c")
	require.NoError(t, fm.EnsureDirectory(path, DirPerm))

	for _, dir := range []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
		path,
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, DirPerm, info.Mode().Perm(), dir)
	}

	// Directories that already existed are left alone.
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestFileManager_MissingDirectories(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "x"), 0755))

	missing := fm.missingDirectories(filepath.Join(root, "x", "y", "z"))
	assert.Equal(t, []string{
		filepath.Join(root, "x", "y"),
		filepath.Join(root, "x", "y", "z"),
	}, missing)

	assert.Empty(t, fm.missingDirectories(root))
}
