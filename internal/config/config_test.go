package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/flagsync/internal/errs"
)

// isolate points HOME at a temp dir and clears flagsync/PostHog variables.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range ValidKeys() {
		t.Setenv(EnvName(k), "")
	}
	for _, names := range aliases {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}
	return home, project
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func TestDefaults(t *testing.T) {
	_, project := isolate(t)
	cfg, err := Load(project)
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host())
	assert.Equal(t, "feature-flags", cfg.FlagsDir())
	assert.Equal(t, "src/feature-flags.ts", cfg.Output())
	assert.Equal(t, "camelCase", cfg.Convention())
	assert.Equal(t, "flags", cfg.Package())
	assert.Equal(t, int64(1<<20), cfg.MaxFileSize())
	assert.Equal(t, LocalPath(project), cfg.Path())
}

func TestLoad_LocalOverridesGlobal(t *testing.T) {
	home, project := isolate(t)
	writeFile(t, filepath.Join(home, ".flagsync", "config.yaml"), `
remote:
  api_key: phx_global_key
  project_id: "1"
generate:
  convention: snake_case
`)
	writeFile(t, filepath.Join(project, ".flagsync", "config.yaml"), `
remote:
  project_id: "2"
flags:
  dir: flags
`)

	cfg, err := Load(project)
	require.NoError(t, err)
	assert.Equal(t, "phx_global_key", cfg.Remote.APIKey)
	assert.Equal(t, "2", cfg.Remote.ProjectID)
	assert.Equal(t, "flags", cfg.FlagsDir())
	assert.Equal(t, "snake_case", cfg.Convention())
	assert.Equal(t, ScopeLocal, cfg.Scope())
}

func TestLoad_Malformed(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, LocalPath(project), "remote: [unclosed")

	_, err := Load(project)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
	assert.Contains(t, err.Error(), "malformed config file")
}

func TestLoad_Invalid(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, LocalPath(project), "limits:\n  max_file_size: 0\n")

	_, err := Load(project)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
	assert.ErrorIs(t, err, ErrInvalidValue)
	e, _ := errs.As(err)
	assert.Equal(t, LocalPath(project), e.Context["path"])
}

func TestValidate(t *testing.T) {
	size := func(n int64) *int64 { return &n }
	tests := []struct {
		name string
		cfg  Config
		key  string
	}{
		{"ok", Config{}, ""},
		{"bad host", Config{Remote: Remote{Host: "us.posthog.com"}}, "remote.host"},
		{"ftp host", Config{Remote: Remote{Host: "ftp://x"}}, "remote.host"},
		{"nul dir", Config{Flags: Flags{Dir: "a\x00b"}}, "flags.dir"},
		{"bad convention", Config{Generate: Generate{Convention: "kebab"}}, "generate.convention"},
		{"bad package", Config{Generate: Generate{Package: "my-flags"}}, "generate.package"},
		{"size zero", Config{Limits: Limits{MaxFileSize: size(0)}}, "limits.max_file_size"},
		{"size max", Config{Limits: Limits{MaxFileSize: size(MaxMaxFileSize)}}, ""},
		{"size over", Config{Limits: Limits{MaxFileSize: size(MaxMaxFileSize + 1)}}, "limits.max_file_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.key == "" {
				assert.NoError(t, err)
				return
			}
			e, ok := errs.As(err)
			require.True(t, ok, "want ConfigError, got %v", err)
			assert.Equal(t, errs.KindConfig, e.Kind)
			assert.Equal(t, tt.key, e.Context["key"])
		})
	}
}

func TestGetSet(t *testing.T) {
	var cfg Config
	for _, k := range ValidKeys() {
		assert.False(t, cfg.IsSet(k), k)
	}

	require.NoError(t, cfg.Set("remote.project_id", "42"))
	require.NoError(t, cfg.Set("limits.max_file_size", "2048"))
	require.NoError(t, cfg.Set("generate.convention", "SCREAMING_SNAKE_CASE"))

	v, err := cfg.Get("remote.project_id")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.Equal(t, int64(2048), cfg.MaxFileSize())
	assert.True(t, cfg.IsSet("limits.max_file_size"))

	err = cfg.Set("limits.max_file_size", "lots")
	assert.ErrorIs(t, err, ErrInvalidValue)
	err = cfg.Set("generate.convention", "kebab")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, "SCREAMING_SNAKE_CASE", cfg.Convention(), "failed Set must not modify config")

	_, err = cfg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.ErrorIs(t, cfg.Set("nope", "x"), ErrUnknownKey)
	assert.True(t, IsValidKey("flags.dir"))
	assert.False(t, IsValidKey("author.name"))
}

func TestSaveRoundTrip(t *testing.T) {
	_, project := isolate(t)
	cfg, err := LoadScope(ScopeLocal, project)
	require.NoError(t, err)
	require.NoError(t, cfg.Set("remote.api_key", "phx_0123456789abcdef"))
	require.NoError(t, cfg.Set("flags.dir", "flags"))
	require.NoError(t, cfg.Save())

	info, err := os.Stat(LocalPath(project))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	again, err := LoadScope(ScopeLocal, project)
	require.NoError(t, err)
	assert.Equal(t, "phx_0123456789abcdef", again.Remote.APIKey)
	assert.Equal(t, "flags", again.FlagsDir())
	assert.False(t, again.IsSet("generate.output"))
}

func TestSave_NoPath(t *testing.T) {
	var cfg Config
	assert.True(t, errors.Is(cfg.Save(), ErrNoConfigPath))
}

func TestRedacted(t *testing.T) {
	cfg := Config{Remote: Remote{APIKey: "phx_0123456789abcdef"}}
	r := cfg.Redacted()
	assert.Equal(t, "phx_****cdef", r["remote.api_key"])
	assert.Equal(t, "phx_0123456789abcdef", cfg.All()["remote.api_key"])
	assert.True(t, IsSecret("remote.api_key"))

	short := Config{Remote: Remote{APIKey: "abc"}}
	assert.Equal(t, "****", short.Redacted()["remote.api_key"])
}

func TestApplyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("POSTHOG_PROJECT_ID", "7")
	t.Setenv("POSTHOG_PERSONAL_API_KEY", "phx_alias")
	t.Setenv("FLAGSYNC_REMOTE_API_KEY", "phx_primary")
	t.Setenv("FLAGSYNC_GENERATE_OUTPUT", "web/flags.ts")

	cfg := Config{Remote: Remote{ProjectID: "1"}}
	applied, err := cfg.ApplyEnv()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"remote.project_id", "remote.api_key", "generate.output"}, applied)
	assert.Equal(t, "7", cfg.Remote.ProjectID)
	assert.Equal(t, "phx_primary", cfg.Remote.APIKey)
	assert.Equal(t, "web/flags.ts", cfg.Output())
}

func TestApplyEnv_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("FLAGSYNC_LIMITS_MAX_FILE_SIZE", "-1")

	var cfg Config
	_, err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
	assert.Contains(t, err.Error(), "FLAGSYNC_LIMITS_MAX_FILE_SIZE")
}
