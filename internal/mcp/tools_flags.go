// tools_flags.go implements the MCP tools that read, validate and generate
// from flag definitions.
//
// Every handler opens a fresh Service so it sees the current config and
// files. Errors are returned as tool results carrying the structured error
// rather than as Go errors: a schema violation is an answer for the LLM,
// not a protocol failure.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/flags"
	"github.com/jpl-au/flagsync/internal/log"
	"github.com/jpl-au/flagsync/internal/schema"
	"github.com/jpl-au/flagsync/internal/service"
)

// flagSummary is one flag in a list response.
type flagSummary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	Description string `json:"description,omitempty"`
	File        string `json:"file"`
}

// failure is one rejected file in a response.
type failure struct {
	File  string         `json:"file"`
	Error map[string]any `json:"error"`
}

func summarise(res flags.Result) ([]flagSummary, []failure) {
	list := make([]flagSummary, 0, len(res.Flags))
	for _, l := range res.Flags {
		s := flagSummary{Key: l.Flag.Key, Name: l.Flag.Name, Active: l.Flag.Active, File: l.File}
		if l.Flag.Description != nil {
			s.Description = *l.Flag.Description
		}
		list = append(list, s)
	}
	fails := make([]failure, 0, len(res.Failures))
	for _, f := range res.Failures {
		fails = append(fails, failure{File: f.File, Error: errs.Structured(f.Err)})
	}
	return list, fails
}

// load opens the service and loads files (or the whole flags directory).
func (h *handlers) load(ctx context.Context, files []string) (service.Service, flags.Result, error) {
	svc, err := h.open()
	if err != nil {
		return nil, flags.Result{}, err
	}
	res, err := svc.Load(ctx, files)
	return svc, res, err
}

// listFlags handles flagsync_list tool calls.
func (h *handlers) listFlags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res, err := h.load(ctx, nil)
	ev := log.Event("mcp:flagsync_list", "list")
	if svc != nil {
		ev.Path(svc.Config().FlagsDir())
	}
	ev.Detail("flags", len(res.Flags)).Detail("failures", len(res.Failures)).Write(err)
	if err != nil {
		return ErrorResult(err)
	}

	list, fails := summarise(res)
	return JSONResult(map[string]any{
		"flags":    list,
		"failures": fails,
	})
}

// validateFiles handles flagsync_validate tool calls.
func (h *handlers) validateFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files := getStrings(req, "files")
	_, res, err := h.load(ctx, files)

	var logErr error = err
	if err == nil && !res.OK() {
		logErr = service.Invalid(res.Failures)
	}
	log.Event("mcp:flagsync_validate", "validate").
		Detail("files", files).
		Detail("flags", len(res.Flags)).
		Write(logErr)

	if err != nil {
		return ErrorResult(err)
	}
	list, fails := summarise(res)
	return JSONResult(map[string]any{
		"valid":    res.OK(),
		"flags":    list,
		"failures": fails,
	})
}

// validateFlag handles flagsync_validate_flag tool calls.
func (h *handlers) validateFlag(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil //nolint:nilerr
	}
	name := getString(req, "name", "inline")

	svc, err := h.open()
	if err != nil {
		log.Event("mcp:flagsync_validate_flag", "validate").Write(err)
		return ErrorResult(err)
	}
	f, err := svc.ValidateContent([]byte(content), name)
	log.Event("mcp:flagsync_validate_flag", "validate").Flag(f.Key).Write(err)
	if err != nil {
		return ErrorResult(err)
	}

	return JSONResult(map[string]any{
		"valid": true,
		"file":  flags.FileName(f.Key),
		"flag":  f,
	})
}

// generate handles flagsync_generate tool calls.
func (h *handlers) generate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := service.GenerateOptions{
		Convention: getString(req, "convention", ""),
		Output:     getString(req, "output", ""),
		DryRun:     getBool(req, "dry_run", false),
	}

	svc, err := h.open()
	if err != nil {
		log.Event("mcp:flagsync_generate", "generate").Write(err)
		return ErrorResult(err)
	}
	res, err := svc.Generate(ctx, opts)
	log.Event("mcp:flagsync_generate", "generate").
		Path(res.Output).
		Detail("convention", res.Convention).
		Detail("dry_run", opts.DryRun).
		Detail("written", res.Written).
		Write(err)
	if err != nil {
		return ErrorResult(err)
	}

	out := map[string]any{
		"output":     res.Output,
		"target":     res.Target,
		"convention": res.Convention,
		"flags":      res.Flags,
		"written":    res.Written,
	}
	if opts.DryRun {
		out["content"] = res.Content
	}
	return JSONResult(out)
}

// schema handles flagsync_schema tool calls.
func (h *handlers) schema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Event("mcp:flagsync_schema", "read").Write(nil)
	return JSONResult(schema.JSONSchema())
}
