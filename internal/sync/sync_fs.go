// sync_fs.go provides the filesystem writes for pull.
//
// Separated from pull.go to isolate low-level file I/O. Files are written to
// a hidden temporary name and renamed into place so a crash mid-write never
// leaves a truncated flag file for the next load to trip over.
//
// Security: All operations use os.Root for path confinement, alongside the
// key pattern check that produced the file name.

package sync

import (
	"errors"
	"io/fs"
	"os"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/path"
)

// writeFlagFile writes content to name inside dir. Unless overwrite is set,
// an existing file is left alone and fs.ErrExist is returned.
func writeFlagFile(dir path.Safe, name string, content []byte, overwrite bool) error {
	if err := os.MkdirAll(dir.Resolved(), 0755); err != nil {
		return errs.FileSystem(errs.OpCreate, dir.Resolved(), err)
	}

	root, err := os.OpenRoot(dir.Resolved())
	if err != nil {
		return errs.FileSystem(errs.OpAccess, dir.Resolved(), err)
	}
	defer root.Close()

	target := dir.Resolved() + string(os.PathSeparator) + name
	if !overwrite {
		if _, err := root.Lstat(name); err == nil {
			return errs.FileSystem(errs.OpCreate, target, fs.ErrExist)
		}
	}

	tmp := "." + name + ".tmp"
	if err := writeDestFile(root, tmp, content); err != nil {
		return errs.FileSystem(errs.OpWrite, target, err)
	}
	if err := root.Rename(tmp, name); err != nil {
		_ = root.Remove(tmp)
		return errs.FileSystem(errs.OpWrite, target, err)
	}
	return nil
}

// writeDestFile writes content to a file using defer for safe cleanup.
func writeDestFile(root *os.Root, name string, content []byte) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	f, err := root.OpenFile(name, flags, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return err
	}
	return f.Sync()
}

// exists reports whether err means the target file was already present.
func exists(err error) bool {
	return errors.Is(err, fs.ErrExist)
}
