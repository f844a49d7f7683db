// sync.go implements the "flagsync sync" command.
//
// Design: Sync pushes every local flag: missing flags are created, changed
// flags updated and the rest left alone. Remote flags with no local file
// are never deleted. A failure on one flag does not stop the others; the
// run exits non-zero once all have been tried. Each change is written to
// the audit log under the run's id.

package remote

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/log"
	syncer "github.com/jpl-au/flagsync/internal/sync"
)

func (e *Extension) newSyncCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "sync",
		Short: "Push local flags to the remote service",
		Long: `Creates or updates remote flags from the local flag files.

  flagsync sync            # push
  flagsync sync -n --diff  # preview, with a diff per updated flag

Refuses to run while any flag file is invalid. Remote flags with no local
file are left alone.`,
		Args: cobra.NoArgs,
		RunE: e.runSync,
	}
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Show what would change without calling the remote API")
	c.Flags().Bool(extension.FlagDiff, false, "Print a diff for every flag that would be updated")
	c.Flags().Bool(extension.FlagNoColor, false, "Disable coloured diff output")
	return c
}

func (e *Extension) runSync(c *cobra.Command, _ []string) error {
	var opts syncer.Options
	opts.DryRun, _ = c.Flags().GetBool(extension.FlagDryRun)
	opts.Diff, _ = c.Flags().GetBool(extension.FlagDiff)
	opts.Colour = colour(c)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	res, err := e.svc.Sync(c.Context(), w, opts)

	for _, ch := range res.Changes {
		ev := log.Event("remote:sync", string(ch.Action)).
			Run(res.RunID).
			Flag(ch.Key).
			Path(ch.File).
			Detail("dry_run", res.DryRun)
		if ch.RemoteID != 0 {
			ev.Detail("remote_id", ch.RemoteID)
		}
		var chErr error
		if ch.Error != "" {
			chErr = errors.New(ch.Error)
		}
		ev.Write(chErr)
	}
	log.Event("remote:sync", "sync").
		Run(res.RunID).
		Path(e.svc.Config().Host()).
		Detail("dry_run", res.DryRun).
		Detail("created", res.Created).
		Detail("updated", res.Updated).
		Detail("unchanged", res.Unchanged).
		Detail("failed", res.Failed).
		Write(err)

	if cmd.JSON() {
		if err != nil && len(res.Changes) == 0 {
			return cmd.PrintJSONError(err)
		}
		_ = cmd.PrintJSON(res)
		return cmd.Silent(err)
	}
	if err != nil && len(res.Changes) == 0 {
		return err
	}

	verb := "synced"
	if res.DryRun {
		verb = "would sync"
	}
	fmt.Fprintf(cmd.Out(), "%s: %d created, %d updated, %d unchanged, %d failed\n",
		verb, res.Created, res.Updated, res.Unchanged, res.Failed)
	return err
}
