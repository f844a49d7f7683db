// tools_config.go implements the MCP tool for reading configuration.
//
// The tool is read-only and always masks secrets: an LLM needs to know
// where flags live and where output goes, never the API key. Changing
// settings stays a deliberate "flagsync config" action by the user.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/log"
)

// configGet handles flagsync_config_get tool calls.
func (h *handlers) configGet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, err := h.open()
	if err != nil {
		log.Event("mcp:flagsync_config_get", "get").Write(err)
		return ErrorResult(err)
	}
	values := svc.Config().Redacted()

	key := getString(req, "key", "")
	if key == "" {
		log.Event("mcp:flagsync_config_get", "list").Write(nil)
		return JSONResult(values)
	}

	if !config.IsValidKey(key) {
		_, err := svc.Config().Get(key)
		log.Event("mcp:flagsync_config_get", "get").Detail("key", key).Write(err)
		return ErrorResult(err)
	}
	log.Event("mcp:flagsync_config_get", "get").Detail("key", key).Write(nil)
	return JSONResult(map[string]string{key: values[key]})
}
