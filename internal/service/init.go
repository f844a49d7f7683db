// init.go scaffolds a new flagsync project: the local config file, the
// flags directory and one example flag so validate and generate have
// something to work on straight away.
//
// Init never overwrites: an existing config or example flag is kept unless
// force is set. The API key is not written; set it with
// FLAGSYNC_REMOTE_API_KEY or "flagsync config --global".

package service

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/path"
)

// ExampleKey is the key of the flag written by Init.
const ExampleKey = "example-flag"

const exampleFlag = `{
  "key": "example-flag",
  "name": "Example flag",
  "active": false,
  "description": "Created by flagsync init. Rename or delete it.",
  "filters": {
    "groups": [
      {
        "properties": [],
        "rollout_percentage": 0
      }
    ]
  }
}
`

// InitOptions configures Init.
type InitOptions struct {
	Force     bool   // Overwrite an existing config and example flag
	ProjectID string // Stored as remote.project_id when set
}

// InitResult lists what Init created.
type InitResult struct {
	Config   string   `json:"config"`
	FlagsDir string   `json:"flagsDir"`
	Created  []string `json:"created"`
}

// Init creates the project skeleton under base.
func Init(base string, opts InitOptions) (InitResult, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return InitResult{}, errs.FileSystem(errs.OpAccess, base, err)
	}

	cfg, err := config.LoadScope(config.ScopeLocal, abs)
	if err != nil {
		return InitResult{}, err
	}
	res := InitResult{Config: cfg.Path()}

	_, statErr := os.Stat(cfg.Path())
	if opts.Force || errors.Is(statErr, fs.ErrNotExist) {
		if !cfg.IsSet("flags.dir") {
			_ = cfg.Set("flags.dir", cfg.FlagsDir())
		}
		if !cfg.IsSet("generate.output") {
			_ = cfg.Set("generate.output", cfg.Output())
		}
		if opts.ProjectID != "" {
			if err := cfg.Set("remote.project_id", opts.ProjectID); err != nil {
				return res, errs.Config("invalid project id").With("key", "remote.project_id").Wrap(err)
			}
		}
		if err := cfg.Save(); err != nil {
			return res, err
		}
		res.Created = append(res.Created, cfg.Path())
	}

	dir, err := path.ResolveDir(cfg.FlagsDir(), abs)
	if err != nil {
		return res, err
	}
	res.FlagsDir = dir.Resolved()
	if err := os.MkdirAll(dir.Resolved(), 0755); err != nil {
		return res, errs.FileSystem(errs.OpCreate, dir.Resolved(), err)
	}

	example, err := dir.Join(flags.FileName(ExampleKey))
	if err != nil {
		return res, err
	}
	names, err := flags.List(dir)
	if err != nil {
		return res, err
	}
	if len(names) > 0 && !opts.Force {
		return res, nil
	}
	if err := os.WriteFile(example.Resolved(), []byte(exampleFlag), 0644); err != nil {
		return res, errs.FileSystem(errs.OpWrite, example.Resolved(), err)
	}
	res.Created = append(res.Created, example.Resolved())
	return res, nil
}
