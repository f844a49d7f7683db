package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/model"
	"github.com/jpl-au/flagsync/internal/path"
	"github.com/jpl-au/flagsync/internal/progress"
	"github.com/jpl-au/flagsync/internal/remote"
	"github.com/jpl-au/flagsync/internal/schema"
)

// PullOptions configures a pull.
type PullOptions struct {
	DryRun bool // Report what would be written without writing
	Force  bool // Overwrite local files whose content differs from remote
}

// PullResult contains the outcome of a pull.
type PullResult struct {
	DryRun      bool     `json:"dryRun"`
	Written     int      `json:"written"`
	Overwritten int      `json:"overwritten"`
	Unchanged   int      `json:"unchanged"`
	Skipped     int      `json:"skipped"`
	Changes     []Change `json:"changes"`
}

// Pull writes remote flags into dir. A flag with no local file is written
// as <key>.json; a flag whose local file differs is rewritten in place only
// with Force. Remote flags that fail the local schema are skipped, so a
// pulled directory always loads cleanly.
func Pull(ctx context.Context, w io.Writer, api remote.API, dir path.Safe, local []flags.Loaded, opts PullOptions) (PullResult, error) {
	res := PullResult{DryRun: opts.DryRun}

	spin := progress.NewSpinner("Listing remote flags")
	spin.Start()
	existing, err := api.List(ctx)
	spin.Stop()
	if err != nil {
		return res, fmt.Errorf("listing remote flags: %w", err)
	}

	byKey := make(map[string]flags.Loaded, len(local))
	for _, l := range local {
		byKey[l.Flag.Key] = l
	}

	prog := progress.New("Pulling", len(existing))
	defer prog.Done()

	var failures []error
	for _, rf := range existing {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		prog.Increment()
		prog.Print()

		c := Change{Key: rf.Key, RemoteID: rf.ID}
		content, err := pullable(rf.Flag)
		if err != nil {
			c.Action = ActionSkip
			c.Error = err.Error()
			res.Skipped++
			res.Changes = append(res.Changes, c)
			logrus.WithField("key", rf.Key).WithError(err).Debug("skipping remote flag")
			fmt.Fprintf(w, "Skipped: %s (%s)\n", rf.Key, errs.Format(err))
			continue
		}

		l, ok := byKey[rf.Key]
		switch {
		case !ok:
			c.Action = ActionCreate
			c.File = flags.FileName(rf.Key)
		default:
			c.File = l.File
			action, err := detect(l.Flag, &rf)
			if err != nil {
				return res, err
			}
			if action == ActionUnchanged {
				c.Action = ActionUnchanged
				res.Unchanged++
				res.Changes = append(res.Changes, c)
				continue
			}
			if !opts.Force {
				c.Action = ActionSkip
				c.Error = "local file differs (use --force to overwrite)"
				res.Skipped++
				res.Changes = append(res.Changes, c)
				fmt.Fprintf(w, "Skipped: %s (local file differs, use --force)\n", rf.Key)
				continue
			}
			c.Action = ActionUpdate
		}

		if opts.DryRun {
			fmt.Fprintf(w, "Would write: %s\n", c.File)
		} else {
			if err := writeFlagFile(dir, c.File, content, c.Action == ActionUpdate); err != nil {
				c.Error = err.Error()
				if exists(err) {
					c.Action = ActionSkip
					res.Skipped++
					fmt.Fprintf(w, "Skipped: %s (%s already exists with another key)\n", rf.Key, c.File)
				} else {
					failures = append(failures, err)
				}
				res.Changes = append(res.Changes, c)
				continue
			}
			fmt.Fprintf(w, "Wrote: %s\n", c.File)
		}

		if c.Action == ActionCreate {
			res.Written++
		} else {
			res.Overwritten++
		}
		res.Changes = append(res.Changes, c)
	}

	return res, errors.Join(failures...)
}

// pullable checks a remote flag against the local schema and returns the
// file content to write.
func pullable(f model.Flag) ([]byte, error) {
	if !schema.ValidKey(f.Key) {
		return nil, errs.Validation(errs.ReasonSchemaViolation, "remote flag key is not a valid local key",
			errs.Violation{Path: "key", Message: "must match pattern " + schema.KeyPattern.String()}).
			With("key", f.Key)
	}
	f = normalise(f)
	content, err := f.Pretty()
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	if _, err := schema.ValidateFlag(data, flags.FileName(f.Key)); err != nil {
		return nil, err
	}
	return content, nil
}
