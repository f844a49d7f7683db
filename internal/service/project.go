// project.go implements Service for a project directory on disk.
//
// Every path the user or the config supplies (flags.dir, generate.output,
// explicit files) goes through the path guard against the project base
// before any I/O, and the per-file size ceiling comes from
// limits.max_file_size.

package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/model"
	"github.com/jpl-au/flagsync/internal/path"
	"github.com/jpl-au/flagsync/internal/remote"
	"github.com/jpl-au/flagsync/internal/validate"
)

// Project is the on-disk Service implementation.
type Project struct {
	base string
	cfg  *config.Config
	api  remote.API // built on first use unless injected
}

var _ Service = (*Project)(nil)

// New loads configuration for the project at base and applies environment
// overrides.
func New(base string) (*Project, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, errs.FileSystem(errs.OpAccess, base, err)
	}
	cfg, err := config.Load(abs)
	if err != nil {
		return nil, err
	}
	applied, err := cfg.ApplyEnv()
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		logrus.WithField("keys", applied).Debug("config overridden from environment")
	}
	return &Project{base: abs, cfg: cfg}, nil
}

// NewWith builds a Project from an already loaded config. api may be nil,
// in which case a client is created from the remote settings on first use.
func NewWith(base string, cfg *config.Config, api remote.API) *Project {
	return &Project{base: base, cfg: cfg, api: api}
}

// Base returns the project directory.
func (p *Project) Base() string { return p.base }

// Config returns the effective configuration.
func (p *Project) Config() *config.Config { return p.cfg }

// FlagsDir returns the guarded flags directory.
func (p *Project) FlagsDir() (path.Safe, error) {
	return path.ResolveDir(p.cfg.FlagsDir(), p.base)
}

func (p *Project) loadOptions() flags.Options {
	return flags.Options{MaxFileSize: p.cfg.MaxFileSize()}
}

// Load validates flag files.
func (p *Project) Load(ctx context.Context, files []string) (flags.Result, error) {
	if len(files) == 0 {
		dir, err := p.FlagsDir()
		if err != nil {
			return flags.Result{}, err
		}
		return flags.Load(ctx, dir, p.loadOptions())
	}

	safe := make([]path.Safe, 0, len(files))
	for _, f := range files {
		s, err := path.Resolve(f, p.base)
		if err != nil {
			return flags.Result{}, err
		}
		safe = append(safe, s)
	}
	return flags.LoadFiles(ctx, safe, p.loadOptions())
}

// ValidateContent checks an in-memory flag definition.
func (p *Project) ValidateContent(raw []byte, name string) (model.Flag, error) {
	if err := validate.Content(raw, p.cfg.MaxFileSize()); err != nil {
		return model.Flag{}, err
	}
	return flags.Parse(raw, name)
}

// remote returns the API client, creating it from config when needed.
func (p *Project) remote() (remote.API, error) {
	if p.api != nil {
		return p.api, nil
	}
	c, err := remote.New(p.cfg.Host(), p.cfg.Remote.ProjectID, p.cfg.Remote.APIKey)
	if err != nil {
		return nil, err
	}
	p.api = c
	return c, nil
}

// loadValid loads the flags directory and refuses to continue when any
// file failed, so generation and sync never act on a partial set.
func (p *Project) loadValid(ctx context.Context) (flags.Result, error) {
	res, err := p.Load(ctx, nil)
	if err != nil {
		return res, err
	}
	if !res.OK() {
		return res, Invalid(res.Failures)
	}
	return res, nil
}

// Invalid summarises per-file failures as one validation error with a
// violation per file.
func Invalid(failures []flags.Failure) error {
	vs := make([]errs.Violation, 0, len(failures))
	for _, f := range failures {
		vs = append(vs, errs.Violation{Path: f.File, Message: f.Err.Error()})
	}
	noun := "files"
	if len(failures) == 1 {
		noun = "file"
	}
	return errs.Validation(errs.ReasonSchemaViolation,
		fmt.Sprintf("%d flag %s failed validation", len(failures), noun), vs...).
		With("failures", len(failures))
}
