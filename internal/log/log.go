// Package log provides centralised audit logging for flagsync operations.
// Logs are stored in ~/.flagsync/log/flagsync-log.db and record every CLI
// command and MCP tool invocation that reads or changes flags, across
// projects.
//
// This is the audit trail, not diagnostic output: diagnostics go to stderr
// through logrus and are controlled by --verbose.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("remote:sync", "push").
//		Run(res.RunID).
//		Path(dir.Resolved()).
//		Detail("created", res.Created).
//		Write(err)
//
//	log.Event("flags:validate", "validate").
//		Flag(key).
//		Write(err)
//
// The source parameter follows the format "{extension}:{command}" for CLI
// commands or "mcp:{tool}" for MCP tools. Examples: "flags:generate",
// "remote:pull", "mcp:flagsync_validate".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jpl-au/flagsync/internal/errs"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g., "remote:sync", "mcp:flagsync_validate"
	Action string // verb: validate, generate, push, pull, diff, etc.
	Path   string // file or directory the operation targeted
	Flag   string // flag key, for single-flag operations
	RunID  string // correlates the entries of one sync run

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool           // whether operation succeeded
	Code    string         // error code (e.g. VALIDATION_ERROR) if failed
	Error   string         // error message if failed
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Path sets the file or directory this operation affects.
func (b *Builder) Path(path string) *Builder {
	b.entry.Path = path
	return b
}

// Flag sets the flag key this operation affects.
func (b *Builder) Flag(key string) *Builder {
	b.entry.Flag = key
	return b
}

// Run sets the sync run id.
func (b *Builder) Run(id string) *Builder {
	b.entry.RunID = id
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// counts, naming conventions, dry-run markers.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
// Failures from the errs taxonomy also record their code.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
		b.entry.Code = "UNKNOWN_ERROR"
		if e, ok := errs.As(err); ok {
			b.entry.Code = e.Code()
		}
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the absolute project base directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
