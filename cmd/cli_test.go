package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	env := newBareEnv(t)

	out := env.run("init", "--project-id", "42")
	env.contains(out, "Initialised flagsync project")
	env.contains(env.read(".flagsync/config.yaml"), "feature-flags")
	env.contains(env.read("feature-flags/example-flag.json"), `"key": "example-flag"`)

	// Re-running leaves everything alone.
	out = env.run("init")
	env.contains(out, "Already initialised")
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("new-checkout.json", testCheckoutFlag)

	out := env.run("validate")
	env.contains(out, "ok    new-checkout.json (new-checkout)")
	env.contains(out, "2 valid, 0 invalid")
}

func TestValidate_ReportsEveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("bad.json", testBadFlag)
	env.writeFlag("broken.json", `{"key": `)

	stdout, _, code := env.runSplit("validate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "FAIL  bad.json")
	assert.Contains(t, stdout, "FAIL  broken.json")
	assert.Contains(t, stdout, "key")
	assert.Contains(t, stdout, "rollout_percentage")
	assert.Contains(t, stdout, "1 valid, 2 invalid")
}

func TestValidate_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("bad.json", testBadFlag)

	v, code := env.runJSON("validate")
	assert.Equal(t, 1, code)
	assert.Equal(t, false, v["valid"])

	files := v["files"].([]any)
	require.Len(t, files, 2)
	var bad map[string]any
	for _, f := range files {
		if m := f.(map[string]any); m["file"] == "bad.json" {
			bad = m
		}
	}
	require.NotNil(t, bad)
	e := bad["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", e["code"])
	assert.Equal(t, "schema_violation", e["reason"])
}

func TestValidate_TraversalAborts(t *testing.T) {
	env := newTestEnv(t)

	v, code := env.runJSON("validate", "../outside.json")
	assert.Equal(t, 1, code)
	e := v["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", e["code"])
	assert.Equal(t, "path_traversal", e["reason"])
}

func TestList(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("promo-banner.json", testBannerFlag)

	out := env.run("list")
	env.contains(out, "KEY")
	env.contains(out, "promo-banner")
	env.contains(out, "example-flag")

	v, code := env.runJSON("list")
	assert.Equal(t, 0, code)
	items := v["flags"].([]any)
	require.Len(t, items, 2)
	banner := items[1].(map[string]any)
	assert.Equal(t, "promo-banner", banner["key"])
	assert.Equal(t, float64(2), banner["variants"])
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("new-checkout.json", testCheckoutFlag)

	out := env.run("generate")
	env.contains(out, "wrote src/feature-flags.ts")
	ts := env.read("src/feature-flags.ts")
	assert.Contains(t, ts, "DO NOT EDIT")
	assert.Contains(t, ts, `newCheckout: "new-checkout",`)
	assert.Contains(t, ts, `exampleFlag: "example-flag",`)

	out = env.run("generate")
	env.contains(out, "up to date")
}

func TestGenerate_GoTarget(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("generate", "--out", "internal/flags/flags.go", "--convention", "SCREAMING_SNAKE_CASE", "-n")
	env.contains(out, "package flags")
	env.contains(out, `EXAMPLE_FLAG Key = "example-flag"`)
	_, err := os.Stat(filepath.Join(env.dir, "internal", "flags", "flags.go"))
	assert.True(t, os.IsNotExist(err), "dry run must not write")
}

func TestGenerate_RefusesInvalid(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("bad.json", testBadFlag)

	_, stderr, code := env.runSplit("generate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[VALIDATION_ERROR]")
	_, err := os.Stat(filepath.Join(env.dir, "src", "feature-flags.ts"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_OutputTraversal(t *testing.T) {
	env := newTestEnv(t)

	v, code := env.runJSON("generate", "--out", "../../evil.ts")
	assert.Equal(t, 1, code)
	assert.Equal(t, "path_traversal", v["error"].(map[string]any)["reason"])
}

func TestSchema(t *testing.T) {
	env := newBareEnv(t)

	out := env.run("schema")
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", doc["$schema"])
	assert.Equal(t, false, doc["additionalProperties"])
}

func TestConfig(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("config", "generate.convention", "snake_case")
	env.contains(out, "generate.convention = snake_case (local)")
	assert.Equal(t, "snake_case\n", env.run("config", "generate.convention"))

	env.run("config", "remote.api_key", "phx_abcdefghijklmnop", "--global")
	out = env.run("config")
	env.contains(out, "remote.api_key: phx_****mnop")
	assert.NotContains(t, out, "abcdefghijklmnop")

	env.setenv("FLAGSYNC_GENERATE_CONVENTION", "camelCase")
	assert.Equal(t, "camelCase\n", env.run("config", "generate.convention"))
}

func TestConfig_InvalidValue(t *testing.T) {
	env := newTestEnv(t)

	v, code := env.runJSON("config", "generate.convention", "kebab")
	assert.Equal(t, 1, code)
	assert.Equal(t, "CONFIG_ERROR", v["error"].(map[string]any)["code"])
}

func TestBrokenConfig_BootstrapStillWorks(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, ".flagsync", "config.yaml"), []byte("flags: [\n"), 0600))

	_, stderr, code := env.runSplit("validate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[CONFIG_ERROR]")

	env.run("guide")
	env.run("version")
}

func TestUnknownCommand(t *testing.T) {
	env := newBareEnv(t)

	_, stderr, code := env.runSplit("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "[CLI_ERROR]")
	assert.Contains(t, stderr, "unknown command")
}

func TestUnknownFlag_JSON(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, code := env.runSplit("-o", "json", "validate", "--bogus")
	assert.Equal(t, 2, code)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &v))
	e := v["error"].(map[string]any)
	assert.Equal(t, "CLI_ERROR", e["code"])
	assert.Equal(t, float64(2), e["exitCode"])
}

func TestInvalidOutputFormat(t *testing.T) {
	env := newBareEnv(t)

	_, stderr, code := env.runSplit("version", "-o", "yaml")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid output format")
}

func TestGuide(t *testing.T) {
	env := newBareEnv(t)

	env.contains(env.run("guide"), "flagsync")
	env.contains(env.run("guide", "schema"), "rollout_percentage")

	// An unknown topic is a usage error.
	_, stderr, code := env.runSplit("guide", "nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Available:")
}

// remoteServer is a fake flag service for one project.
type remoteServer struct {
	mu      sync.Mutex
	flags   []map[string]any
	creates int
	patches int
}

func (s *remoteServer) start(t *testing.T, env *testEnv) {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer phx_test" {
				http.Error(w, `{"detail":"unauthorised"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/projects/42/feature_flags", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"results": s.flags, "next": nil})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var f map[string]any
			_ = json.NewDecoder(req.Body).Decode(&f)
			f["id"] = len(s.flags) + 1
			s.flags = append(s.flags, f)
			s.creates++
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(f)
		})
		r.Patch("/{id}/", func(w http.ResponseWriter, req *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			id, _ := strconv.Atoi(chi.URLParam(req, "id"))
			var f map[string]any
			_ = json.NewDecoder(req.Body).Decode(&f)
			f["id"] = id
			s.patches++
			_ = json.NewEncoder(w).Encode(f)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	env.setenv("POSTHOG_HOST", srv.URL)
	env.setenv("POSTHOG_PERSONAL_API_KEY", "phx_test")
}

func TestSync(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("new-checkout.json", testCheckoutFlag)
	srv := &remoteServer{flags: []map[string]any{
		{"id": 1, "key": "new-checkout", "name": "Old name", "active": true},
	}}
	srv.start(t, env)

	out := env.run("sync", "-n", "--diff")
	env.contains(out, "Would create: example-flag")
	env.contains(out, "Would update: new-checkout")
	env.contains(out, "would sync: 1 created, 1 updated, 0 unchanged, 0 failed")
	assert.Zero(t, srv.creates)
	assert.Zero(t, srv.patches)

	v, code := env.runJSON("sync")
	assert.Equal(t, 0, code)
	assert.Equal(t, float64(1), v["created"])
	assert.Equal(t, float64(1), v["updated"])
	assert.NotEmpty(t, v["runId"])
	assert.Equal(t, 1, srv.creates)
	assert.Equal(t, 1, srv.patches)
}

func TestSync_RefusesInvalid(t *testing.T) {
	env := newTestEnv(t)
	env.writeFlag("bad.json", testBadFlag)
	srv := &remoteServer{}
	srv.start(t, env)

	_, stderr, code := env.runSplit("sync")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[VALIDATION_ERROR]")
	assert.Zero(t, srv.creates)
}

func TestSync_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	srv := &remoteServer{}
	srv.start(t, env)
	env.setenv("POSTHOG_PERSONAL_API_KEY", "wrong")

	v, code := env.runJSON("sync")
	assert.Equal(t, 1, code)
	e := v["error"].(map[string]any)
	assert.Equal(t, "REMOTE_API_ERROR", e["code"])
	assert.Equal(t, float64(http.StatusUnauthorized), e["statusCode"])
}

func TestPull(t *testing.T) {
	env := newTestEnv(t)
	srv := &remoteServer{flags: []map[string]any{
		{"id": 1, "key": "promo-banner", "name": "Promo", "active": true},
		{"id": 2, "key": "Not Valid", "name": "Legacy", "active": true},
	}}
	srv.start(t, env)

	out := env.run("pull")
	env.contains(out, "Wrote: promo-banner.json")
	env.contains(out, "Skipped: Not Valid")
	env.contains(env.read("feature-flags/promo-banner.json"), `"name": "Promo"`)

	// The local example flag is kept.
	env.contains(env.run("validate"), "2 valid, 0 invalid")
}

func TestDiff(t *testing.T) {
	env := newTestEnv(t)
	srv := &remoteServer{flags: []map[string]any{
		{"id": 1, "key": "example-flag", "name": "Renamed remotely", "active": false},
	}}
	srv.start(t, env)

	out := env.run("diff", "example-flag")
	env.contains(out, "Renamed remotely")
	env.contains(out, "Example flag")

	v, code := env.runJSON("diff", "example-flag")
	assert.Equal(t, 0, code)
	assert.Equal(t, true, v["changed"])

	_, stderr, code := env.runSplit("diff", "missing-flag")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, fmt.Sprintf("flag %s not found", "missing-flag"))
}
