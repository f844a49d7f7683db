// list.go implements the "flagsync list" command.

package local

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/log"
)

func (e *Extension) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the flags in the flags directory",
		Long: `Lists every valid flag with its state and rollout groups.
Files that fail validation are listed after the flags.`,
		Args: cobra.NoArgs,
		RunE: e.runList,
	}
}

// listItem is one flag in the JSON output.
type listItem struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Groups   int    `json:"groups"`
	Variants int    `json:"variants"`
	File     string `json:"file"`
}

func (e *Extension) runList(c *cobra.Command, _ []string) error {
	res, err := e.svc.Load(c.Context(), nil)

	log.Event("local:list", "list").
		Path(e.svc.Config().FlagsDir()).
		Detail("flags", len(res.Flags)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}

	items := make([]listItem, 0, len(res.Flags))
	for _, l := range res.Flags {
		it := listItem{
			Key:      l.Flag.Key,
			Name:     l.Flag.Name,
			Active:   l.Flag.Active,
			Variants: len(l.Flag.Variants),
			File:     l.File,
		}
		if f := l.Flag.Filters; f != nil {
			it.Groups = len(f.Groups)
			if f.Multivariate != nil {
				it.Variants = len(f.Multivariate.Variants)
			}
		}
		items = append(items, it)
	}

	if cmd.JSON() {
		invalid := make([]fileResult, 0, len(res.Failures))
		for _, f := range res.Failures {
			invalid = append(invalid, fileResult{File: f.File, Error: errs.Structured(f.Err)})
		}
		return cmd.PrintJSON(map[string]any{"flags": items, "invalid": invalid})
	}

	if len(items) == 0 && len(res.Failures) == 0 {
		fmt.Fprintf(cmd.Out(), "No flags in %s\n", e.svc.Config().FlagsDir())
		return nil
	}

	tw := tabwriter.NewWriter(cmd.Out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTATE\tGROUPS\tVARIANTS\tNAME")
	for _, it := range items {
		state := "off"
		if it.Active {
			state = "on"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", it.Key, state, it.Groups, it.Variants, it.Name)
	}
	_ = tw.Flush()

	for _, f := range res.Failures {
		fmt.Fprintf(cmd.Out(), "invalid: %s\n", errs.Format(f.Err))
	}
	return nil
}
