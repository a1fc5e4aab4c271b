//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package filemanager

import "io/fs"

// AdjustPermissions is a no-op on platforms without POSIX directory modes.
func AdjustPermissions(string, fs.FileMode) error {
	return nil
}
