package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/service"
)

func testHandlers(t *testing.T) (*handlers, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range config.ValidKeys() {
		t.Setenv(config.EnvName(k), "")
	}
	base := t.TempDir()
	_, err := service.Init(base, service.InitOptions{})
	require.NoError(t, err)
	return &handlers{open: func() (service.Service, error) { return service.New(base) }}, base
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "want text content, got %T", res.Content[0])
	return tc.Text
}

func TestListFlags(t *testing.T) {
	h, base := testHandlers(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "feature-flags", "bad.json"), []byte(`{"key":"BAD"}`), 0644))

	res, err := h.listFlags(context.Background(), call(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	out := text(t, res)
	assert.Contains(t, out, `"key": "example-flag"`)
	assert.Contains(t, out, `"file": "bad.json"`)
	assert.Contains(t, out, "VALIDATION_ERROR")
}

func TestValidateFiles(t *testing.T) {
	h, _ := testHandlers(t)

	res, err := h.validateFiles(context.Background(), call(map[string]any{
		"files": []any{"feature-flags/example-flag.json"},
	}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"valid": true`)

	res, err = h.validateFiles(context.Background(), call(map[string]any{
		"files": []any{"../../etc/passwd"},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "path_traversal")
}

func TestValidateFlag(t *testing.T) {
	h, _ := testHandlers(t)

	res, err := h.validateFlag(context.Background(), call(map[string]any{
		"content": `{"key":"new-checkout","name":"New checkout","active":true}`,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"file": "new-checkout.json"`)

	res, err = h.validateFlag(context.Background(), call(map[string]any{
		"content": `{"key":"x","name":"X","active":"yes"}`,
		"name":    "draft.json",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	out := text(t, res)
	assert.Contains(t, out, "schema_violation")
	assert.Contains(t, out, "draft.json")
	assert.Contains(t, out, `"path": "active"`)

	res, err = h.validateFlag(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGenerateTool(t *testing.T) {
	h, base := testHandlers(t)

	res, err := h.generate(context.Background(), call(map[string]any{
		"convention": "snake_case",
		"dry_run":    true,
	}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "example_flag")
	assert.Contains(t, out, `"written": false`)
	assert.NoFileExists(t, filepath.Join(base, "src", "feature-flags.ts"))

	res, err = h.generate(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"written": true`)
	assert.FileExists(t, filepath.Join(base, "src", "feature-flags.ts"))
}

func TestSchemaTool(t *testing.T) {
	h, _ := testHandlers(t)
	res, err := h.schema(context.Background(), call(nil))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, `"$schema"`)
	assert.Contains(t, out, `"rollout_percentage"`)
}

func TestConfigGet_MasksSecrets(t *testing.T) {
	h, _ := testHandlers(t)
	t.Setenv("FLAGSYNC_REMOTE_API_KEY", "phx_0123456789abcdef")

	res, err := h.configGet(context.Background(), call(map[string]any{"key": "remote.api_key"}))
	require.NoError(t, err)
	out := text(t, res)
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "phx_****cdef")

	res, err = h.configGet(context.Background(), call(map[string]any{"key": "author.name"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGuideTool(t *testing.T) {
	h, _ := testHandlers(t)
	res, err := h.getGuide(context.Background(), call(map[string]any{"topic": "schema"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "rollout_percentage")

	res, err = h.getGuide(context.Background(), call(map[string]any{"topic": "nope"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "available_topics")
}

func TestParseFlagURI(t *testing.T) {
	key, err := parseFlagURI("flagsync://flags/new-checkout")
	require.NoError(t, err)
	assert.Equal(t, "new-checkout", key)

	for _, uri := range []string{
		"flagsync://flags/",
		"flagsync://flags/../config",
		"flagsync://flags/Upper",
		"other://flags/a",
	} {
		_, err := parseFlagURI(uri)
		assert.ErrorIs(t, err, ErrInvalidURI, uri)
	}
}

func TestReadFlag(t *testing.T) {
	h, _ := testHandlers(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = "flagsync://flags/example-flag"
	contents, err := h.readFlag(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, tc.Text, `"key": "example-flag"`)

	req.Params.URI = "flagsync://flags/missing"
	_, err = h.readFlag(context.Background(), req)
	assert.ErrorIs(t, err, ErrFlagNotFound)
}

func TestNewServer(t *testing.T) {
	h, _ := testHandlers(t)
	assert.NotNil(t, newServer(h))
}

func TestWrap(t *testing.T) {
	h, base := testHandlers(t)

	var got string
	tool := Tool{
		Def: mcp.NewTool("test_base"),
		Handler: func(_ context.Context, svc service.Service, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			got = svc.Base()
			return mcp.NewToolResultText("ok"), nil
		},
	}
	res, err := h.wrap(tool)(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", text(t, res))
	assert.Equal(t, base, got)

	// A config that fails to load is reported to the client, not returned.
	require.NoError(t, os.WriteFile(config.LocalPath(base), []byte("flags: [\n"), 0600))
	got = ""
	res, err = h.wrap(tool)(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "CONFIG_ERROR")
	assert.Empty(t, got)
}
