package filemanager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/aleister1102/ingestor/internal/common/errorwrapper"
)

// MoveFile moves src to dst. A plain rename is tried first; when src and
// dst live on different devices the file is copied, synced and the source
// removed. dst must not exist.
func (fm *FileManager) MoveFile(src, dst string) error {
	if fm.FileExists(dst) {
		return errorwrapper.NewValidationError("destination", dst, "already exists")
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to move %s to %s", src, dst))
	}

	fm.logger.Debug().Str("src", src).Str("dst", dst).Msg("Cross-device move, falling back to copy")
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to copy %s to %s", src, dst))
	}
	if err := os.Remove(src); err != nil {
		return errorwrapper.WrapError(err, "copied but failed to remove source: "+src)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, stat.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, stat.ModTime(), stat.ModTime())
}
