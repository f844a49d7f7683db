// list.go enumerates flag files. Only the top level of the flags directory
// is read; subdirectories and hidden files are ignored.

package flags

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/path"
)

// List returns the names of the flag files in dir, sorted.
// A missing directory is a FlagFileError.
func List(dir path.Safe) ([]string, error) {
	root, err := os.OpenRoot(dir.Resolved())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e := errs.FlagFile(dir.Resolved(), err)
			e.Message = "flags directory not found: " + dir.Resolved()
			return nil, e
		}
		return nil, errs.FileSystem(errs.OpAccess, dir.Resolved(), err)
	}
	defer root.Close()

	f, err := root.Open(".")
	if err != nil {
		return nil, errs.FileSystem(errs.OpRead, dir.Resolved(), err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, errs.FileSystem(errs.OpRead, dir.Resolved(), err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), Ext) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// FileName returns the conventional file name for a flag key.
func FileName(key string) string {
	return key + Ext
}
