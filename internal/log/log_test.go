package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/flagsync/internal/errs"
)

// useTempDB points the logger at a database under a temp directory.
func useTempDB(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	orig := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	t.Cleanup(func() {
		Close()
		dbPathFunc = orig
	})
}

func query(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", DBPath())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLogger(t *testing.T) {
	useTempDB(t)

	t.Run("open creates database", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		_, err := os.Stat(DBPath())
		assert.NoError(t, err)
	})

	t.Run("log success entry", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		SetProject("/test/project")
		Log(Entry{
			Source:  "flags:validate",
			Action:  "validate",
			Path:    "feature-flags",
			Success: true,
		})

		var source, action, path, project string
		var success int
		err := query(t).QueryRow("SELECT source, action, path, project, success FROM log ORDER BY id DESC LIMIT 1").
			Scan(&source, &action, &path, &project, &success)
		require.NoError(t, err)
		assert.Equal(t, "flags:validate", source)
		assert.Equal(t, "validate", action)
		assert.Equal(t, "feature-flags", path)
		assert.Equal(t, hash("/test/project"), project)
		assert.Equal(t, 1, success)
	})

	t.Run("absent fields stored as null", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		Log(Entry{Source: "core:version", Action: "read", Success: true})

		var path, flag, code sql.NullString
		err := query(t).QueryRow("SELECT path, flag, code FROM log ORDER BY id DESC LIMIT 1").
			Scan(&path, &flag, &code)
		require.NoError(t, err)
		assert.False(t, path.Valid)
		assert.False(t, flag.Valid)
		assert.False(t, code.Valid)
	})

	t.Run("log without logger is noop", func(t *testing.T) {
		Close()
		Log(Entry{Source: "test:cmd", Action: "test", Success: true})
	})

	t.Run("open is idempotent", func(t *testing.T) {
		require.NoError(t, Open())
		require.NoError(t, Open())
		Close()
	})
}

func TestHash(t *testing.T) {
	h1 := hash("/home/user/project")
	h2 := hash("/home/user/project")
	h3 := hash("/home/user/other")

	assert.Equal(t, h1, h2, "same input should produce same hash")
	assert.NotEqual(t, h1, h3, "different input should produce different hash")
	assert.Len(t, h1, 16, "BLAKE2b-64 should produce 16 hex chars")
}

func TestDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	orig := dbPathFunc
	dbPathFunc = defaultDBPath
	defer func() { dbPathFunc = orig }()

	assert.Equal(t, filepath.Join(home, ".flagsync", "log", "flagsync-log.db"), DBPath())
}

func TestBuilder(t *testing.T) {
	useTempDB(t)

	t.Run("success", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		Event("remote:sync", "push").
			Run("run-1").
			Path("feature-flags").
			Flag("new-checkout").
			Write(nil)

		var source, action, path, flag, run string
		var success int
		err := query(t).QueryRow("SELECT source, action, path, flag, run_id, success FROM log ORDER BY id DESC LIMIT 1").
			Scan(&source, &action, &path, &flag, &run, &success)
		require.NoError(t, err)
		assert.Equal(t, "remote:sync", source)
		assert.Equal(t, "push", action)
		assert.Equal(t, "feature-flags", path)
		assert.Equal(t, "new-checkout", flag)
		assert.Equal(t, "run-1", run)
		assert.Equal(t, 1, success)
	})

	t.Run("typed error records code", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		failure := errs.Validation(errs.ReasonSchemaViolation, "invalid flag key")
		Event("flags:validate", "validate").Flag("Bad Key").Write(failure)

		var success int
		var code, msg string
		err := query(t).QueryRow("SELECT success, code, error FROM log ORDER BY id DESC LIMIT 1").
			Scan(&success, &code, &msg)
		require.NoError(t, err)
		assert.Equal(t, 0, success)
		assert.Equal(t, failure.Code(), code)
		assert.Equal(t, failure.Error(), msg)
	})

	t.Run("plain error", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		Event("flags:list", "list").Write(sql.ErrNoRows)

		var code, msg string
		err := query(t).QueryRow("SELECT code, error FROM log ORDER BY id DESC LIMIT 1").
			Scan(&code, &msg)
		require.NoError(t, err)
		assert.Equal(t, "UNKNOWN_ERROR", code)
		assert.Equal(t, sql.ErrNoRows.Error(), msg)
	})

	t.Run("detail", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		Event("flags:generate", "generate").
			Detail("convention", "snake_case").
			Detail("count", 42).
			Write(nil)

		var detail string
		err := query(t).QueryRow("SELECT detail FROM log ORDER BY id DESC LIMIT 1").Scan(&detail)
		require.NoError(t, err)
		assert.Contains(t, detail, "snake_case")
		assert.Contains(t, detail, "42")
	})
}
