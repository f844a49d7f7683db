// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full stack:
// command parsing -> extension -> service layer -> loader, generator, sync.
//
// Each internal package carries its own unit tests. The tests here prove
// the pieces are wired together: flags reach the service, errors reach the
// terminal with the right exit code, and -o json output parses.
//
// Every run gets its own HOME so the global config and the audit log never
// touch the developer's machine, and FLAGSYNC_* / POSTHOG_* variables are
// stripped so the environment cannot change results.

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the flagsync binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "flagsync-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "flagsync"
		if os.PathSeparator == '\\' {
			binaryName = "flagsync.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	home   string
	binary string
	env    map[string]string
}

// newTestEnv creates a temporary project initialised with "flagsync init".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newBareEnv(t)
	env.run("init", "--project-id", "42")
	return env
}

// newBareEnv creates a temporary project directory with nothing in it.
func newBareEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:      t,
		dir:    t.TempDir(),
		home:   t.TempDir(),
		binary: buildBinary(t),
		env:    map[string]string{},
	}
}

// setenv adds a variable to every later run.
func (e *testEnv) setenv(k, v string) { e.env[k] = v }

// environ returns the process environment with flagsync variables
// stripped and HOME isolated.
func (e *testEnv) environ() []string {
	var out []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		switch {
		case strings.HasPrefix(name, "FLAGSYNC_"), strings.HasPrefix(name, "POSTHOG_"):
			continue
		case name == "HOME", name == "USERPROFILE", name == "NO_COLOR":
			continue
		}
		out = append(out, kv)
	}
	out = append(out, "HOME="+e.home, "USERPROFILE="+e.home, "NO_COLOR=1")
	for k, v := range e.env {
		out = append(out, k+"="+v)
	}
	return out
}

// run executes flagsync with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("flagsync %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes flagsync and returns combined output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = e.environ()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runSplit executes flagsync and returns stdout, stderr and the exit code.
func (e *testEnv) runSplit(args ...string) (string, string, int) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = e.environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		e.t.Fatalf("flagsync %v: %v", args, err)
	}
	return stdout.String(), stderr.String(), code
}

// runJSON executes flagsync with -o json and decodes stdout.
func (e *testEnv) runJSON(args ...string) (map[string]any, int) {
	e.t.Helper()
	stdout, stderr, code := e.runSplit(append(args, "-o", "json")...)
	var v map[string]any
	require.NoError(e.t, json.Unmarshal([]byte(stdout), &v), "stdout: %s\nstderr: %s", stdout, stderr)
	return v, code
}

// writeFlag writes a flag file into the default flags directory.
func (e *testEnv) writeFlag(name, content string) {
	e.t.Helper()
	dir := filepath.Join(e.dir, "feature-flags")
	require.NoError(e.t, os.MkdirAll(dir, 0755))
	require.NoError(e.t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// read returns a file under the project directory.
func (e *testEnv) read(rel string) string {
	e.t.Helper()
	b, err := os.ReadFile(filepath.Join(e.dir, rel))
	require.NoError(e.t, err)
	return string(b)
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// Flag definitions used across tests.
const (
	testCheckoutFlag = `{
  "key": "new-checkout",
  "name": "New checkout",
  "active": true,
  "filters": {
    "groups": [{"properties": [], "rollout_percentage": 25}]
  }
}`

	testBannerFlag = `{
  "key": "promo-banner",
  "name": "Promo banner",
  "active": false,
  "filters": {
    "groups": [{"rollout_percentage": 100, "variant": "blue"}],
    "multivariate": {
      "variants": [
        {"key": "blue", "rollout_percentage": 50},
        {"key": "green", "rollout_percentage": 50}
      ]
    }
  }
}`

	// Uppercase key and a rollout above 100.
	testBadFlag = `{
  "key": "Bad_Key",
  "name": "Broken",
  "active": true,
  "filters": {"groups": [{"rollout_percentage": 150}]}
}`
)
