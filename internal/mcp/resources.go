// resources.go implements MCP resource handlers for flag access.
//
// Resources give read-only access to flag definitions by URI, so a client
// can load a flag into context without calling a tool. URIs follow the
// pattern flagsync://flags/{key}; the key must match the flag key pattern,
// which also keeps it from naming anything outside the flags directory.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/flagsync/internal/schema"
)

var (
	// ErrInvalidURI indicates a malformed resource URI.
	ErrInvalidURI = errors.New("invalid URI")
	// ErrFlagNotFound indicates no valid flag has the requested key.
	ErrFlagNotFound = errors.New("flag not found")
)

// readFlag handles flagsync://flags/{key} resource requests.
func (h *handlers) readFlag(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	key, err := parseFlagURI(uri)
	if err != nil {
		return nil, err
	}

	_, res, err := h.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	l, ok := res.Find(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlagNotFound, key)
	}
	data, err := l.Flag.Pretty()
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// readSchema handles the flagsync://schema resource.
func (h *handlers) readSchema(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(schema.JSONSchema(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/schema+json",
			Text:     string(data),
		},
	}, nil
}

// parseFlagURI extracts the flag key from flagsync://flags/{key}.
func parseFlagURI(uri string) (string, error) {
	const prefix = "flagsync://flags/"
	key, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	if !schema.ValidKey(key) {
		return "", fmt.Errorf("%w: invalid flag key %q", ErrInvalidURI, key)
	}
	return key, nil
}
