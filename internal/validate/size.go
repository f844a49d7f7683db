// size.go implements the file size guard.
//
// Only metadata is read: one stat call, no file content. The check runs
// after path containment and before the file is opened for parsing.

package validate

import (
	"errors"
	"io/fs"
	"os"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/path"
)

// FileSize checks that the file at p exists and is no larger than maxBytes.
// A maxBytes of zero or less applies DefaultMaxFileSize.
//
// Failure modes:
//   - missing file: ValidationError(file_not_found)
//   - directory or other non-regular file: ValidationError(invalid_path)
//   - larger than maxBytes: ValidationError(file_too_large) with path, size, maxBytes
//   - any other stat failure: FileSystemError(access)
func FileSize(p path.Safe, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}

	info, err := os.Stat(p.Resolved())
	if errors.Is(err, fs.ErrNotExist) {
		return errs.Validation(errs.ReasonFileNotFound, "file not found").
			With("path", p.Resolved())
	}
	if err != nil {
		return errs.FileSystem(errs.OpAccess, p.Resolved(), err)
	}
	if !info.Mode().IsRegular() {
		return errs.Validation(errs.ReasonInvalidPath, "not a regular file").
			With("path", p.Resolved())
	}

	if size := info.Size(); size > maxBytes {
		return errs.Validation(errs.ReasonFileTooLarge, "file exceeds size limit").
			With("path", p.Resolved()).
			With("size", size).
			With("maxBytes", maxBytes)
	}
	return nil
}
