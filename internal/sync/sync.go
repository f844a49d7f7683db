// Package sync reconciles local flag definitions with the remote flag
// service.
//
// Run pushes: every local flag is created remotely when missing, updated
// when its content differs, and left alone otherwise. Remote flags with no
// local file are never deleted. Pull goes the other way and writes remote
// flags into the flags directory.
//
// A failure on one flag is recorded and the run continues with the next;
// the joined failures are returned as the error once every flag has been
// tried.
//
// Security: Pull writes through os.OpenRoot on the flags directory and
// every file name is derived from a key that passed the key pattern, so a
// hostile key from the remote service cannot escape the directory.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/diff"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/progress"
	"github.com/jpl-au/flagsync/internal/remote"
)

// Options configures a push.
type Options struct {
	DryRun bool   // Report what would change without calling the remote API
	Diff   bool   // Print a diff for every flag that would be updated
	Colour bool   // Colourise diffs
	RunID  string // Correlates audit entries; generated when empty
}

// Change is the outcome for one flag.
type Change struct {
	Key      string `json:"key"`
	File     string `json:"file,omitempty"`
	Action   Action `json:"action"`
	RemoteID int64  `json:"remoteId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result contains the outcome of a sync operation.
type Result struct {
	RunID     string   `json:"runId"`
	DryRun    bool     `json:"dryRun"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
	Changes   []Change `json:"changes"`
}

// Run pushes local flags to the remote service. Progress lines go to w.
func Run(ctx context.Context, w io.Writer, api remote.API, local []flags.Loaded, opts Options) (Result, error) {
	res := Result{RunID: opts.RunID, DryRun: opts.DryRun}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}
	log := logrus.WithField("run", res.RunID)

	spin := progress.NewSpinner("Listing remote flags")
	spin.Start()
	existing, err := api.List(ctx)
	spin.Stop()
	if err != nil {
		return res, fmt.Errorf("listing remote flags: %w", err)
	}
	byKey := index(existing)
	log.WithField("remote", len(existing)).WithField("local", len(local)).Debug("sync started")

	prog := progress.New("Syncing", len(local))
	defer prog.Done()

	var failures []error
	for _, l := range local {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rf := byKey[l.Flag.Key]
		c := Change{Key: l.Flag.Key, File: l.File}
		if rf != nil {
			c.RemoteID = rf.ID
		}

		c.Action, err = detect(l.Flag, rf)
		if err != nil {
			c.Action = ActionSkip
			c.Error = err.Error()
			failures = append(failures, fmt.Errorf("%s: %w", l.Flag.Key, err))
			res.Failed++
			res.Changes = append(res.Changes, c)
			continue
		}

		if c.Action == ActionUpdate && opts.Diff {
			if d, err := diff.Flags(rf.Flag, l.Flag); err == nil {
				fmt.Fprint(w, d.Format(opts.Colour))
			}
		}

		if err := apply(ctx, w, api, &c, l, opts.DryRun); err != nil {
			c.Error = err.Error()
			failures = append(failures, fmt.Errorf("%s: %w", l.Flag.Key, err))
			res.Failed++
		} else {
			switch c.Action {
			case ActionCreate:
				res.Created++
			case ActionUpdate:
				res.Updated++
			case ActionUnchanged:
				res.Unchanged++
			}
		}
		log.WithField("key", c.Key).WithField("action", c.Action).Debug("flag synced")
		res.Changes = append(res.Changes, c)
		prog.Increment()
		prog.Print()
	}

	return res, errors.Join(failures...)
}

// apply performs c.Action against the remote service.
func apply(ctx context.Context, w io.Writer, api remote.API, c *Change, l flags.Loaded, dryRun bool) error {
	switch c.Action {
	case ActionCreate:
		if dryRun {
			fmt.Fprintf(w, "Would create: %s\n", c.Key)
			return nil
		}
		rf, err := api.Create(ctx, l.Flag)
		if err != nil {
			return err
		}
		c.RemoteID = rf.ID
		fmt.Fprintf(w, "Created: %s\n", c.Key)

	case ActionUpdate:
		if dryRun {
			fmt.Fprintf(w, "Would update: %s\n", c.Key)
			return nil
		}
		if _, err := api.Update(ctx, c.RemoteID, l.Flag); err != nil {
			return err
		}
		fmt.Fprintf(w, "Updated: %s\n", c.Key)
	}
	return nil
}
