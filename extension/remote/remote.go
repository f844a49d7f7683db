// Package remote provides the extension for commands that talk to the
// remote flag service: sync, pull and diff.
//
// It also contributes the MCP tools that read from the remote service.
// None of them write remotely: an assistant can preview a sync but a push
// always goes through the CLI.
package remote

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/service"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the remote sync extension.
type Extension struct {
	svc service.Service
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "remote".
func (e *Extension) Name() string { return "remote" }

// Init connects to the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the remote service commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newSyncCmd(),
		e.newPullCmd(),
		e.newDiffCmd(),
	}
}

// MCPTools returns the read-only remote tools.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{
		diffTool(),
		syncPreviewTool(),
	}
}

// colour reports whether diffs should be colourised: stdout is a terminal
// and neither --no-color nor NO_COLOR is set.
func colour(c *cobra.Command) bool {
	if off, _ := c.Flags().GetBool(extension.FlagNoColor); off {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
