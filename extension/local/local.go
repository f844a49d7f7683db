// Package local provides the extension for commands that work on the flag
// files in the project: validate, list and generate.
//
// None of these commands talk to the remote service, so they run offline
// and in CI without credentials.
package local

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/service"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the local flag file extension.
type Extension struct {
	svc service.Service
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "local".
func (e *Extension) Name() string { return "local" }

// Init connects to the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the flag file commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newValidateCmd(),
		e.newListCmd(),
		e.newGenerateCmd(),
	}
}

// MCPTools returns nil - flag file tools are provided by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
