// Package extension provides the plugin architecture for flagsync.
// Extensions group related commands (and any MCP tools that belong with
// them) and register at init time, so a new command family never needs
// changes to the root command.
package extension

import (
	"github.com/spf13/cobra"
)

// Extension defines the contract for flagsync extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to add to "flagsync serve" alongside the
	// built-in flag tools.
	MCPTools() []MCPTool
}

// Initializable extensions receive the shared Context before their
// commands run.
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Standalone is an optional interface for extensions with commands that
// must run without a loaded project: bootstrap commands like init, and
// commands that build their own Service (serve). Listed commands do not
// trigger project loading in PersistentPreRunE, so a missing or broken
// config does not stop them.
type Standalone interface {
	StandaloneCommands() []string
}
