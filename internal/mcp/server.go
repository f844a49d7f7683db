// Package mcp implements the Model Context Protocol server, exposing
// flagsync operations to LLMs. Assistants can list and validate flags,
// check a definition before writing it, regenerate constants and read the
// flag JSON Schema through a standardised protocol.
package mcp

import (
	"context"
	"errors"
	stdlog "log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/service"
	"github.com/jpl-au/flagsync/internal/version"
)

// Name is advertised to clients during capability negotiation.
const Name = "flagsync"

// Serve starts the MCP server over stdio for the project at base.
// Uses stdio transport for compatibility with Claude Desktop and other MCP clients.
//
// Configuration is reloaded on every tool call, so edits made with
// "flagsync config" while the server runs take effect immediately. A
// broken config does not stop the server; the affected tools return the
// config error instead.
func Serve(ctx context.Context, base string, tools ...Tool) error {
	// stdout is reserved for MCP JSON-RPC messages
	logrus.SetOutput(os.Stderr)

	h := &handlers{open: func() (service.Service, error) { return service.New(base) }}
	s := newServer(h, tools...)

	stdio := server.NewStdioServer(s)
	w := logrus.StandardLogger().WriterLevel(logrus.ErrorLevel)
	defer w.Close()
	stdio.SetErrorLogger(stdlog.New(w, "", 0))

	logrus.WithField("version", version.Short()).WithField("base", base).Info("flagsync MCP server ready")

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		logrus.Info("server stopped")
		return nil
	}
	return err
}

func newServer(h *handlers, tools ...Tool) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version.Short(),
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	for _, t := range tools {
		s.AddTool(t.Def, h.wrap(t))
	}
	return s
}

// Tool is a tool contributed by a CLI extension. Handler receives a
// Service opened for the call.
type Tool struct {
	Def     mcp.Tool
	Handler func(ctx context.Context, svc service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// wrap adapts t to the server's handler signature.
func (h *handlers) wrap(t Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		svc, err := h.open()
		if err != nil {
			return ErrorResult(err)
		}
		return t.Handler(ctx, svc, req)
	}
}

// handlers provides MCP request handlers. open builds a Service from the
// current configuration.
type handlers struct {
	open func() (service.Service, error)
}

// registerResources adds URI-based access to flag definitions.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"flagsync://flags/{key}",
			"Flag",
			mcp.WithTemplateDescription("Read a validated flag definition by key"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		h.readFlag,
	)
	s.AddResource(
		mcp.NewResource(
			"flagsync://schema",
			"Flag JSON Schema",
			mcp.WithResourceDescription("JSON Schema every flag file must satisfy"),
			mcp.WithMIMEType("application/schema+json"),
		),
		h.readSchema,
	)
}

// registerTools exposes flagsync operations as MCP tools for LLM invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("flagsync_list",
			mcp.WithDescription("List the feature flags defined in the project's flags directory, with any files that failed validation"),
		),
		h.listFlags,
	)

	s.AddTool(
		mcp.NewTool("flagsync_validate",
			mcp.WithDescription("Validate flag files against the flag schema. Validates the whole flags directory unless files are given"),
			mcp.WithArray("files",
				mcp.Description("Flag files relative to the project directory (optional)"),
				mcp.WithStringItems(),
			),
		),
		h.validateFiles,
	)

	s.AddTool(
		mcp.NewTool("flagsync_validate_flag",
			mcp.WithDescription("Validate a flag definition given as JSON text, before writing it to a file"),
			mcp.WithString("content", mcp.Required(), mcp.Description("Flag definition as a JSON object")),
			mcp.WithString("name", mcp.Description("Name used in error messages (default: inline)")),
		),
		h.validateFlag,
	)

	s.AddTool(
		mcp.NewTool("flagsync_generate",
			mcp.WithDescription("Generate typed flag constants from the flags directory"),
			mcp.WithString("convention",
				mcp.Description("Identifier naming convention (default: generate.convention)"),
				mcp.Enum("camelCase", "snake_case", "SCREAMING_SNAKE_CASE"),
			),
			mcp.WithString("output", mcp.Description("Output file relative to the project; .ts or .go (default: generate.output)")),
			mcp.WithBoolean("dry_run", mcp.Description("Return the generated source without writing it")),
		),
		h.generate,
	)

	s.AddTool(
		mcp.NewTool("flagsync_schema",
			mcp.WithDescription("Return the JSON Schema that flag files must satisfy"),
		),
		h.schema,
	)

	s.AddTool(
		mcp.NewTool("flagsync_guide",
			mcp.WithDescription("Get help/guide content for flagsync"),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g., 'schema', 'sync') or empty for index")),
		),
		h.getGuide,
	)

	s.AddTool(
		mcp.NewTool("flagsync_config_get",
			mcp.WithDescription("Get effective configuration values. Secrets are masked"),
			mcp.WithString("key", mcp.Description("Config key (e.g. flags.dir, generate.output) or empty for all")),
		),
		h.configGet,
	)
}
