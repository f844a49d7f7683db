// Package flags loads feature flag definitions from a directory of JSON
// files.
//
// Every file passes through the same pipeline: path containment, the size
// guard, JSON parsing and schema validation. Files are processed
// independently and concurrently; the result for one file depends only on
// that file's content.
//
// Failure policy:
//   - A bad file (unreadable, too large, invalid JSON, schema violation,
//     duplicate key) is recorded in Result.Failures and the batch continues
//   - A path traversal attempt aborts the whole load and is returned as the
//     error, because it indicates hostile or misconfigured input
package flags

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/model"
	"github.com/jpl-au/flagsync/internal/path"
	"github.com/jpl-au/flagsync/internal/schema"
	"github.com/jpl-au/flagsync/internal/validate"
)

// Ext is the extension of flag files.
const Ext = ".json"

// Options configures a load.
type Options struct {
	MaxFileSize int64    // Per-file ceiling; <= 0 uses validate.DefaultMaxFileSize
	Files       []string // Restrict to these names inside the directory; empty loads every flag file
	Concurrency int      // Parallel file loads; <= 0 uses GOMAXPROCS
}

// Loaded is a flag together with the file it came from.
type Loaded struct {
	File string // Path relative to the flags directory
	Flag model.Flag
}

// Failure records a file that was skipped.
type Failure struct {
	File string
	Err  error
}

// Result is the outcome of a load. Flags and Failures are ordered by file
// name so output is deterministic regardless of scheduling.
type Result struct {
	Flags    []Loaded
	Failures []Failure
}

// OK reports whether every file loaded.
func (r Result) OK() bool { return len(r.Failures) == 0 }

// Definitions returns the loaded flags without their file names.
func (r Result) Definitions() []model.Flag {
	out := make([]model.Flag, len(r.Flags))
	for i, l := range r.Flags {
		out[i] = l.Flag
	}
	return out
}

// Find returns the flag with the given key.
func (r Result) Find(key string) (Loaded, bool) {
	for _, l := range r.Flags {
		if l.Flag.Key == key {
			return l, true
		}
	}
	return Loaded{}, false
}

// Parse decodes raw JSON and validates it as a flag definition.
// name identifies the source in error messages.
func Parse(raw []byte, name string) (model.Flag, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		e := errs.FlagFile(name, err)
		e.Message = "invalid JSON in flag file " + name
		return model.Flag{}, e
	}
	return schema.ValidateFlag(data, name)
}

// Load reads every flag file in dir, or only opts.Files when set.
func Load(ctx context.Context, dir path.Safe, opts Options) (Result, error) {
	names := opts.Files
	if len(names) == 0 {
		var err error
		names, err = List(dir)
		if err != nil {
			return Result{}, err
		}
	}

	files := make([]path.Safe, 0, len(names))
	for _, n := range names {
		p, err := dir.Join(n)
		if err != nil {
			return Result{}, err
		}
		files = append(files, p)
	}
	return LoadFiles(ctx, files, opts)
}

// LoadFiles loads an explicit set of already resolved files.
func LoadFiles(ctx context.Context, files []path.Safe, opts Options) (Result, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	type outcome struct {
		file string
		flag model.Flag
		err  error
	}
	out := make([]outcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := loadFile(p, opts.MaxFileSize)
			if errs.HasReason(err, errs.ReasonPathTraversal) {
				return err
			}
			out[i] = outcome{file: p.Rel(), flag: f, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	slices.SortStableFunc(out, func(a, b outcome) int { return strings.Compare(a.file, b.file) })

	var res Result
	seen := make(map[string]string, len(out))
	for _, o := range out {
		if o.err != nil {
			logrus.WithField("file", o.file).WithError(o.err).Debug("skipping flag file")
			res.Failures = append(res.Failures, Failure{File: o.file, Err: o.err})
			continue
		}
		if first, dup := seen[o.flag.Key]; dup {
			err := errs.Validation(errs.ReasonSchemaViolation,
				"duplicate flag key "+o.flag.Key+" in "+o.file,
				errs.Violation{Path: "key", Message: "already defined in " + first}).
				With("file", o.file).
				With("key", o.flag.Key)
			res.Failures = append(res.Failures, Failure{File: o.file, Err: err})
			continue
		}
		seen[o.flag.Key] = o.file
		logrus.WithField("file", o.file).WithField("key", o.flag.Key).Debug("loaded flag")
		res.Flags = append(res.Flags, Loaded{File: o.file, Flag: o.flag})
	}
	return res, nil
}

// loadFile runs one file through the guards, then parses it. The read goes
// through an os.Root on the file's base so a symlink swapped in after the
// lexical check still cannot escape.
func loadFile(p path.Safe, maxBytes int64) (model.Flag, error) {
	if err := validate.FileSize(p, maxBytes); err != nil {
		return model.Flag{}, err
	}

	root, err := os.OpenRoot(p.Base())
	if err != nil {
		return model.Flag{}, errs.FileSystem(errs.OpAccess, p.Base(), err)
	}
	defer root.Close()

	raw, err := root.ReadFile(p.Rel())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Flag{}, errs.FlagFile(p.Rel(), err)
		}
		// os.Root refuses a link out of the base; confirm it on disk rather
		// than trusting the error text.
		if p.Escapes() {
			return model.Flag{}, errs.Validation(errs.ReasonPathTraversal, "path escapes base directory").
				With("input", p.Rel()).
				With("base", p.Base()).
				With("resolvedPath", p.Resolved()).
				Wrap(err)
		}
		return model.Flag{}, errs.FileSystem(errs.OpRead, p.Resolved(), err)
	}

	// The file may have grown between stat and read.
	if err := validate.Content(raw, maxBytes); err != nil {
		return model.Flag{}, err
	}
	return Parse(raw, p.Rel())
}
