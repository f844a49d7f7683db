// serve.go implements the "flagsync serve" command for MCP server operation.
//
// Separated from extension.go because serve has unique lifecycle requirements.
// Unlike other commands that run and exit, serve blocks handling MCP
// requests over stdio until stdin closes or the process is interrupted.
//
// Design: Serve is standalone - it builds a Service per tool call instead
// of using the shared one from the root command, so config edits made
// while it runs take effect without a restart.

package core

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/log"
	"github.com/jpl-au/flagsync/internal/mcp"
	"github.com/jpl-au/flagsync/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

  flagsync serve                 # serve the working directory
  flagsync serve --dir ./web     # serve another project`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(c *cobra.Command, _ []string) error {
	log.Event("core:serve", "start").Path(cmd.Base()).Write(nil)
	return mcp.Serve(c.Context(), cmd.Base(), extensionTools()...)
}

// extensionTools adapts the MCP tools registered by extensions to the
// server's tool type.
func extensionTools() []mcp.Tool {
	ext := extension.Tools()
	tools := make([]mcp.Tool, 0, len(ext))
	for _, t := range ext {
		h := t.Handler
		tools = append(tools, mcp.Tool{
			Def: t.Tool,
			Handler: func(ctx context.Context, svc service.Service, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
				return h(ctx, extension.NewContext(svc), req)
			},
		})
	}
	return tools
}
