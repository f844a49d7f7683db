// Package core provides the core extension for flagsync.
// It registers commands: init, config, guide, version, schema, serve.
package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct{}

// Compile-time interface compliance. Catches missing methods at build time
// rather than runtime, making interface changes safer to refactor.
var (
	_ extension.Extension  = (*Extension)(nil)
	_ extension.Standalone = (*Extension)(nil)
)

// Name returns "core" - this extension provides the bootstrap commands.
func (e *Extension) Name() string { return "core" }

// Commands returns all core CLI commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newInitCmd(),
		newConfigCmd(),
		newGuideCmd(),
		newSchemaCmd(),
		newServeCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil - the MCP server provides its own core tools.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// StandaloneCommands returns commands that run without a loaded project.
// schema: Prints a fixed document.
// serve: Reloads config on every tool call, so a broken config must not
// stop it from starting.
func (e *Extension) StandaloneCommands() []string {
	return []string{"schema", "serve"}
}
