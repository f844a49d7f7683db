// diff.go implements the "flagsync diff" command.

package remote

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/log"
)

func (e *Extension) newDiffCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "diff <key>",
		Short: "Compare the remote and local definitions of a flag",
		Long: `Shows what "flagsync sync" would change for one flag.

  flagsync diff new-checkout

A flag that does not exist remotely is compared with an empty document.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runDiff,
	}
	c.Flags().Bool(extension.FlagNoColor, false, "Disable coloured output")
	return c
}

func (e *Extension) runDiff(c *cobra.Command, args []string) error {
	key := args[0]
	res, err := e.svc.Diff(c.Context(), key)

	log.Event("remote:diff", "diff").Flag(key).Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"key":     key,
			"old":     res.Old,
			"new":     res.New,
			"changed": !res.Empty(),
			"diff":    res.Diff,
		})
	}
	if res.Empty() {
		fmt.Fprintf(cmd.Out(), "%s: no changes\n", key)
		return nil
	}
	fmt.Fprint(cmd.Out(), res.Format(colour(c)))
	return nil
}
