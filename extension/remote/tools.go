// tools.go implements the MCP tools contributed by the remote extension.
//
// Both tools only read from the remote service. The sync preview is a dry
// run: it reports what "flagsync sync" would create and update without
// calling Create or Update.

package remote

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/log"
	flagmcp "github.com/jpl-au/flagsync/internal/mcp"
	syncer "github.com/jpl-au/flagsync/internal/sync"
)

func diffTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("flagsync_diff",
			mcp.WithDescription("Compare the remote and local definitions of one flag"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Flag key")),
		),
		Handler: handleDiff,
	}
}

func handleDiff(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}

	res, err := extCtx.Service().Diff(ctx, key)
	log.Event("mcp:flagsync_diff", "diff").Flag(key).Write(err)
	if err != nil {
		return flagmcp.ErrorResult(err)
	}
	return flagmcp.JSONResult(map[string]any{
		"key":     key,
		"old":     res.Old,
		"new":     res.New,
		"changed": !res.Empty(),
		"diff":    res.Diff,
	})
}

func syncPreviewTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("flagsync_sync_preview",
			mcp.WithDescription("Preview what a sync would create and update on the remote service. Makes no remote changes"),
		),
		Handler: handleSyncPreview,
	}
}

func handleSyncPreview(ctx context.Context, extCtx extension.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := extCtx.Service().Sync(ctx, io.Discard, syncer.Options{DryRun: true})
	log.Event("mcp:flagsync_sync_preview", "sync").
		Run(res.RunID).
		Detail("dry_run", true).
		Detail("created", res.Created).
		Detail("updated", res.Updated).
		Write(err)
	if err != nil && len(res.Changes) == 0 {
		return flagmcp.ErrorResult(err)
	}
	return flagmcp.JSONResult(res)
}
