// generate.go implements the "flagsync generate" command.
//
// Design: Generation refuses to run while any flag file is invalid, so the
// constants never describe a partial set of flags. With --watch the
// command keeps running and regenerates after each burst of changes in the
// flags directory; a failed run is reported and watching continues.

package local

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/generate"
	"github.com/jpl-au/flagsync/internal/log"
	"github.com/jpl-au/flagsync/internal/service"
	"github.com/jpl-au/flagsync/internal/watch"
)

func (e *Extension) newGenerateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate typed flag constants",
		Long: `Generates typed constants for every flag key.

  flagsync generate                          # generate.output, generate.convention
  flagsync generate --out internal/flags/flags.go
  flagsync generate --convention SCREAMING_SNAKE_CASE
  flagsync generate --watch                  # regenerate on change

The target language follows the output extension: .ts or .go.
The file is only rewritten when its content changes.`,
		Args: cobra.NoArgs,
		RunE: e.runGenerate,
	}
	c.Flags().String(extension.FlagConvention, "", "Naming convention: camelCase, snake_case, SCREAMING_SNAKE_CASE")
	c.Flags().String(extension.FlagOut, "", "Output file (default: generate.output)")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Print the generated source instead of writing it")
	c.Flags().BoolP(extension.FlagWatch, "w", false, "Regenerate when flag files change")
	c.MarkFlagsMutuallyExclusive(extension.FlagDryRun, extension.FlagWatch)

	_ = c.RegisterFlagCompletionFunc(extension.FlagConvention, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(generate.Conventions))
		for i, cv := range generate.Conventions {
			names[i] = string(cv)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return c
}

func (e *Extension) runGenerate(c *cobra.Command, _ []string) error {
	var opts service.GenerateOptions
	opts.Convention, _ = c.Flags().GetString(extension.FlagConvention)
	opts.Output, _ = c.Flags().GetString(extension.FlagOut)
	opts.DryRun, _ = c.Flags().GetBool(extension.FlagDryRun)
	watching, _ := c.Flags().GetBool(extension.FlagWatch)

	if err := e.generateOnce(c.Context(), opts); err != nil {
		if !watching {
			return cmd.PrintJSONError(err)
		}
		// Keep watching: the next save may fix the file.
		fmt.Fprintln(c.ErrOrStderr(), errs.Format(err))
	}
	if !watching {
		return nil
	}

	dir, err := e.svc.FlagsDir()
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	fmt.Fprintf(c.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", dir.Rel())

	w := watch.Watcher{Dir: dir, Ext: flags.Ext}
	err = w.Run(c.Context(), func(ctx context.Context) error {
		return e.generateOnce(ctx, opts)
	})
	return cmd.PrintJSONError(err)
}

// generateOnce runs one generation and reports it.
func (e *Extension) generateOnce(ctx context.Context, opts service.GenerateOptions) error {
	res, err := e.svc.Generate(ctx, opts)

	log.Event("local:generate", "generate").
		Path(res.Output).
		Detail("convention", res.Convention).
		Detail("flags", res.Flags).
		Detail("dry_run", opts.DryRun).
		Detail("written", res.Written).
		Write(err)

	if err != nil {
		return err
	}

	if cmd.JSON() {
		out := map[string]any{
			"output":     res.Output,
			"target":     res.Target,
			"convention": res.Convention,
			"flags":      res.Flags,
			"written":    res.Written,
		}
		if opts.DryRun {
			out["content"] = res.Content
		}
		return cmd.PrintJSON(out)
	}

	switch {
	case opts.DryRun:
		fmt.Fprint(cmd.Out(), res.Content)
	case res.Written:
		fmt.Fprintf(cmd.Out(), "wrote %s (%d flags, %s)\n", res.Output, res.Flags, res.Convention)
	default:
		fmt.Fprintf(cmd.Out(), "%s is up to date (%d flags)\n", res.Output, res.Flags)
	}
	return nil
}
