// validate.go implements the "flagsync validate" command.
//
// Design: Every file is checked and every failure reported before the
// command exits, so one run shows all the work to do. A traversal attempt
// is the exception: it aborts the run because the input itself is hostile.

package local

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/log"
	"github.com/jpl-au/flagsync/internal/service"
)

func (e *Extension) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate flag files against the flag schema",
		Long: `Validates flag files against the flag schema.

  flagsync validate                              # every file in flags.dir
  flagsync validate feature-flags/new-checkout.json

Exits non-zero when any file fails; every failure is printed first.`,
		RunE: e.runValidate,
	}
}

// fileResult is one file in the JSON output.
type fileResult struct {
	File  string         `json:"file"`
	Key   string         `json:"key,omitempty"`
	Valid bool           `json:"valid"`
	Error map[string]any `json:"error,omitempty"`
}

func (e *Extension) runValidate(c *cobra.Command, args []string) error {
	res, err := e.svc.Load(c.Context(), args)

	var failed error
	if err == nil && !res.OK() {
		failed = service.Invalid(res.Failures)
	}
	logErr := err
	if logErr == nil {
		logErr = failed
	}
	log.Event("local:validate", "validate").
		Path(e.svc.Config().FlagsDir()).
		Detail("files", args).
		Detail("flags", len(res.Flags)).
		Detail("failures", len(res.Failures)).
		Write(logErr)

	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		_ = cmd.PrintJSON(map[string]any{
			"valid": res.OK(),
			"files": fileResults(res),
		})
		return cmd.Silent(failed)
	}

	for _, l := range res.Flags {
		fmt.Fprintf(cmd.Out(), "ok    %s (%s)\n", l.File, l.Flag.Key)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(cmd.Out(), "FAIL  %s\n", f.File)
		printFailure(f.Err)
	}
	fmt.Fprintf(cmd.Out(), "%d valid, %d invalid\n", len(res.Flags), len(res.Failures))
	return failed
}

// printFailure lists each violation on its own line, or the message when
// the error carries none.
func printFailure(err error) {
	e, ok := errs.As(err)
	if !ok || len(e.Violations) == 0 {
		fmt.Fprintf(cmd.Out(), "      %s\n", errs.Format(err))
		return
	}
	for _, v := range e.Violations {
		fmt.Fprintf(cmd.Out(), "      %s\n", v)
	}
}

func fileResults(res flags.Result) []fileResult {
	out := make([]fileResult, 0, len(res.Flags)+len(res.Failures))
	for _, l := range res.Flags {
		out = append(out, fileResult{File: l.File, Key: l.Flag.Key, Valid: true})
	}
	for _, f := range res.Failures {
		out = append(out, fileResult{File: f.File, Error: errs.Structured(f.Err)})
	}
	return out
}
