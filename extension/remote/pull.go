// pull.go implements the "flagsync pull" command.
//
// Design: Pull writes remote flags into the flags directory. A flag with
// no local file is created; a local file that differs is only rewritten
// with --force. Local files are never deleted, and remote flags that fail
// the local schema are skipped so the directory keeps validating.

package remote

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/log"
	syncer "github.com/jpl-au/flagsync/internal/sync"
)

func (e *Extension) newPullCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "pull",
		Short: "Write remote flags into the flags directory",
		Long: `Writes remote flags into the flags directory as <key>.json.

  flagsync pull          # add flags that only exist remotely
  flagsync pull -n       # preview
  flagsync pull --force  # also overwrite local files that differ`,
		Args: cobra.NoArgs,
		RunE: e.runPull,
	}
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Show what would be written")
	c.Flags().BoolP(extension.FlagForce, "f", false, "Overwrite local files whose content differs")
	return c
}

func (e *Extension) runPull(c *cobra.Command, _ []string) error {
	var opts syncer.PullOptions
	opts.DryRun, _ = c.Flags().GetBool(extension.FlagDryRun)
	opts.Force, _ = c.Flags().GetBool(extension.FlagForce)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	res, err := e.svc.Pull(c.Context(), w, opts)

	log.Event("remote:pull", "pull").
		Path(e.svc.Config().FlagsDir()).
		Detail("dry_run", opts.DryRun).
		Detail("force", opts.Force).
		Detail("written", res.Written).
		Detail("overwritten", res.Overwritten).
		Detail("skipped", res.Skipped).
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

	verb := "pulled"
	if res.DryRun {
		verb = "would pull"
	}
	fmt.Fprintf(cmd.Out(), "%s: %d written, %d overwritten, %d unchanged, %d skipped\n",
		verb, res.Written, res.Overwritten, res.Unchanged, res.Skipped)
	return err
}
