//go:build linux || darwin || freebsd || netbsd || openbsd

package filemanager

import (
	"io/fs"
	"os"
)

// AdjustPermissions relaxes the mode of a freshly created directory so that
// producers and consumers running as other users can share it.
func AdjustPermissions(path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}
