// project_ops.go implements the operations that combine loading with
// generation or the remote service.

package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/diff"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/generate"
	"github.com/jpl-au/flagsync/internal/path"
	syncer "github.com/jpl-au/flagsync/internal/sync"
)

// Generate renders and writes typed constants.
func (p *Project) Generate(ctx context.Context, opts GenerateOptions) (GenerateResult, error) {
	conv := opts.Convention
	if conv == "" {
		conv = p.cfg.Convention()
	}
	c, err := generate.ParseConvention(conv)
	if err != nil {
		return GenerateResult{}, err
	}

	name := opts.Output
	if name == "" {
		name = p.cfg.Output()
	}
	out, err := path.Resolve(name, p.base)
	if err != nil {
		return GenerateResult{}, err
	}
	target, err := generate.TargetFor(out.Resolved())
	if err != nil {
		return GenerateResult{}, err
	}

	loaded, err := p.loadValid(ctx)
	if err != nil {
		return GenerateResult{}, err
	}

	content, err := generate.Render(loaded.Definitions(), generate.Options{
		Convention: c,
		Target:     target,
		Package:    p.cfg.Package(),
	})
	if err != nil {
		return GenerateResult{}, err
	}

	res := GenerateResult{
		Output:     out.Rel(),
		Target:     string(target),
		Convention: string(c),
		Flags:      len(loaded.Flags),
		Content:    content,
	}
	if opts.DryRun {
		return res, nil
	}
	res.Written, err = generate.Write(out, content)
	logrus.WithField("output", res.Output).WithField("written", res.Written).Debug("generated")
	return res, err
}

// Sync pushes every local flag. It refuses to run while any flag file is
// invalid.
func (p *Project) Sync(ctx context.Context, w io.Writer, opts syncer.Options) (syncer.Result, error) {
	loaded, err := p.loadValid(ctx)
	if err != nil {
		return syncer.Result{}, err
	}
	api, err := p.remote()
	if err != nil {
		return syncer.Result{}, err
	}
	return syncer.Run(ctx, w, api, loaded.Flags, opts)
}

// Pull writes remote flags into the flags directory. Invalid local files
// do not block a pull; they are never overwritten because their keys are
// unknown.
func (p *Project) Pull(ctx context.Context, w io.Writer, opts syncer.PullOptions) (syncer.PullResult, error) {
	dir, err := p.FlagsDir()
	if err != nil {
		return syncer.PullResult{}, err
	}
	loaded, err := p.Load(ctx, nil)
	if err != nil {
		return syncer.PullResult{}, err
	}
	api, err := p.remote()
	if err != nil {
		return syncer.PullResult{}, err
	}
	return syncer.Pull(ctx, w, api, dir, loaded.Flags, opts)
}

// Diff compares the remote and local definitions of key. A flag missing
// remotely is diffed against an empty document.
func (p *Project) Diff(ctx context.Context, key string) (diff.Result, error) {
	loaded, err := p.Load(ctx, nil)
	if err != nil {
		return diff.Result{}, err
	}
	local, ok := loaded.Find(key)
	if !ok {
		return diff.Result{}, errs.Validation(errs.ReasonFileNotFound,
			fmt.Sprintf("flag %s not found in %s", key, p.cfg.FlagsDir())).
			With("key", key)
	}

	api, err := p.remote()
	if err != nil {
		return diff.Result{}, err
	}
	existing, err := api.List(ctx)
	if err != nil {
		return diff.Result{}, fmt.Errorf("listing remote flags: %w", err)
	}
	for _, rf := range existing {
		if rf.Key == key {
			return diff.Flags(rf.Flag, local.Flag)
		}
	}

	content, err := local.Flag.Pretty()
	if err != nil {
		return diff.Result{}, fmt.Errorf("encoding local flag: %w", err)
	}
	return diff.Compute("", string(content), "remote/"+key+" (missing)", "local/"+key), nil
}
