// tools_util.go provides helper functions for MCP tool parameter extraction
// and result encoding.
//
// Extraction is permissive: a missing or mistyped optional parameter
// yields the default rather than an error, because LLMs frequently omit
// optional parameters or send them in unexpected shapes.

package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/flagsync/internal/errs"
)

// getString extracts a string parameter, returning def if it is missing
// or not a string.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getBool extracts a boolean parameter. A string "true" is not accepted.
func getBool(req mcp.CallToolRequest, name string, def bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// getStrings extracts a string array parameter. JSON arrays decode as
// []any, so non-string elements are skipped. Returns nil when absent.
func getStrings(req mcp.CallToolRequest, name string) []string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	arr, ok := args[name].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// JSONResult serialises v as indented JSON in a text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult reports err to the client as the structured error object
// the CLI prints with -o json, so an LLM sees the code, reason and
// violations instead of a flattened message.
func ErrorResult(err error) (*mcp.CallToolResult, error) {
	data, mErr := json.MarshalIndent(errs.Structured(err), "", "  ")
	if mErr != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultError(string(data)), nil
}
