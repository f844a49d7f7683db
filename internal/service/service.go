// Package service defines the shared interface for flag operations.
// Commands and MCP tools depend on this interface rather than on the
// loader, generator and sync packages directly, so every entry point
// applies the same configuration, guards and failure policy.
package service

import (
	"context"
	"io"

	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/diff"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/model"
	"github.com/jpl-au/flagsync/internal/path"
	syncer "github.com/jpl-au/flagsync/internal/sync"
)

// Service defines all flag operations for one project.
//
// Use New to obtain a Service for a project directory:
//
//	svc, err := service.New(base)
//	if err != nil {
//	    return err
//	}
//	res, err := svc.Load(ctx, nil)
type Service interface {
	// Base returns the absolute project directory every path is resolved
	// against.
	Base() string

	// Config returns the effective configuration (global, local, then
	// environment).
	Config() *config.Config

	// FlagsDir returns the guarded flags directory.
	FlagsDir() (path.Safe, error)

	// Load validates flag files. With no files it loads the whole flags
	// directory; otherwise each file is resolved against Base.
	// Per-file failures are in the result; a traversal attempt is the error.
	Load(ctx context.Context, files []string) (flags.Result, error)

	// ValidateContent checks an in-memory flag definition with the same
	// size ceiling and schema as files on disk.
	ValidateContent(raw []byte, name string) (model.Flag, error)

	// Generate renders typed constants for every flag and writes them to
	// the configured output unless opts.DryRun is set.
	Generate(ctx context.Context, opts GenerateOptions) (GenerateResult, error)

	// Sync pushes local flags to the remote service.
	Sync(ctx context.Context, w io.Writer, opts syncer.Options) (syncer.Result, error)

	// Pull writes remote flags into the flags directory.
	Pull(ctx context.Context, w io.Writer, opts syncer.PullOptions) (syncer.PullResult, error)

	// Diff compares the remote and local definitions of one flag.
	Diff(ctx context.Context, key string) (diff.Result, error)
}

// GenerateOptions overrides configuration for one generation run.
type GenerateOptions struct {
	Convention string // Naming convention; empty uses generate.convention
	Output     string // Output file relative to Base; empty uses generate.output
	DryRun     bool   // Render without writing
}

// GenerateResult describes a generation run.
type GenerateResult struct {
	Output     string `json:"output"`
	Target     string `json:"target"`
	Convention string `json:"convention"`
	Flags      int    `json:"flags"`
	Written    bool   `json:"written"`
	Content    string `json:"-"`
}
