// Package errs defines the closed error taxonomy shared by every flagsync
// package. A single *Error type carries a Kind discriminant and the payload
// that belongs to that kind, so callers can switch on Kind instead of
// asserting against a hierarchy of types.
//
// Guards and validators always return an *Error with full context. Whether
// a failure is skipped (one bad flag file among many) or aborts the run (a
// path traversal attempt) is decided by the caller, never here.
//
//	if errs.Is(err, errs.KindValidation) {
//	    fmt.Fprintln(os.Stderr, errs.Format(err))
//	}
package errs

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Kind identifies one of the seven error categories.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindFlagFile
	KindGeneration
	KindRemoteAPI
	KindValidation
	KindFileSystem
	KindCLI
)

var codes = map[Kind]string{
	KindConfig:     "CONFIG_ERROR",
	KindFlagFile:   "FLAG_FILE_ERROR",
	KindGeneration: "GENERATION_ERROR",
	KindRemoteAPI:  "REMOTE_API_ERROR",
	KindValidation: "VALIDATION_ERROR",
	KindFileSystem: "FILE_SYSTEM_ERROR",
	KindCLI:        "CLI_ERROR",
}

// Code returns the stable machine-readable code for k.
func (k Kind) Code() string {
	if c, ok := codes[k]; ok {
		return c
	}
	return "UNKNOWN_ERROR"
}

func (k Kind) String() string { return k.Code() }

// Reason narrows a validation failure to the guard that produced it.
type Reason string

const (
	ReasonInvalidPath     Reason = "invalid_path"
	ReasonPathTraversal   Reason = "path_traversal"
	ReasonFileNotFound    Reason = "file_not_found"
	ReasonFileTooLarge    Reason = "file_too_large"
	ReasonSchemaViolation Reason = "schema_violation"
)

// Op is the filesystem operation that failed.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpCreate Op = "create"
	OpDelete Op = "delete"
	OpAccess Op = "access"
)

// Violation is a single schema mismatch at a property path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Error is the only error type produced by flagsync's core packages.
// Fields beyond Kind, Message, Context and Time are only meaningful for the
// kind noted beside them.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Time    time.Time
	Cause   error

	StatusCode int    // KindRemoteAPI
	Body       string // KindRemoteAPI

	Reason     Reason      // KindValidation
	Violations []Violation // KindValidation

	Op   Op     // KindFileSystem
	Path string // KindFileSystem

	Command  string // KindCLI
	ExitCode int    // KindCLI
}

// Code returns the stable code of the error's kind.
func (e *Error) Code() string { return e.Kind.Code() }

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// With adds a context entry and returns e for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap sets the underlying cause.
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

func newError(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg, Context: map[string]any{}, Time: time.Now()}
}

// Config reports a structurally invalid configuration object or file.
func Config(format string, args ...any) *Error {
	return newError(KindConfig, fmt.Sprintf(format, args...))
}

// FlagFile reports a flag file that could not be located or read.
func FlagFile(file string, cause error) *Error {
	return newError(KindFlagFile, fmt.Sprintf("flag file %s", file)).
		With("file", file).
		Wrap(cause)
}

// Generation reports a failure in the code generation step.
func Generation(format string, args ...any) *Error {
	return newError(KindGeneration, fmt.Sprintf(format, args...))
}

// RemoteAPI reports a non-success response from the remote flag service.
func RemoteAPI(method, url string, status int, body string) *Error {
	e := newError(KindRemoteAPI, fmt.Sprintf("%s %s returned HTTP %d", method, url, status))
	e.StatusCode = status
	e.Body = body
	return e.With("method", method).With("url", url).With("status", status)
}

// Validation reports a guard or schema failure.
func Validation(reason Reason, msg string, violations ...Violation) *Error {
	e := newError(KindValidation, msg)
	e.Reason = reason
	e.Violations = violations
	return e.With("reason", string(reason))
}

// FileSystem reports a failed filesystem operation.
func FileSystem(op Op, path string, cause error) *Error {
	e := newError(KindFileSystem, fmt.Sprintf("%s %s", op, path))
	e.Op = op
	e.Path = path
	return e.With("operation", string(op)).With("path", path).Wrap(cause)
}

// CLI reports a top-level command failure with the process exit code.
func CLI(command string, exitCode int, cause error) *Error {
	e := newError(KindCLI, fmt.Sprintf("command %s failed", command))
	e.Command = command
	e.ExitCode = exitCode
	return e.With("command", command).With("exitCode", exitCode).Wrap(cause)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether any *Error in err's chain has kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == k {
			return true
		}
		err = e.Cause
	}
	return false
}

// HasReason reports whether err is a validation error with the given reason.
func HasReason(err error, r Reason) bool {
	e, ok := As(err)
	return ok && e.Kind == KindValidation && e.Reason == r
}

// ExitCode maps err to a process exit code: 0 for nil, the CLI error's own
// code when present, otherwise 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindCLI && e.ExitCode != 0 {
		return e.ExitCode
	}
	return 1
}

// Format renders err as a single line: "[CODE] message (k=v, ...)".
// Non-taxonomy errors are rendered with their plain message.
func Format(err error) string {
	e, ok := As(err)
	if !ok {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code(), e.Error())

	ctx := e.flatten()
	if len(ctx) > 0 {
		keys := slices.Sorted(maps.Keys(ctx))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, ctx[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

// flatten merges the context map with the kind payload into one level.
func (e *Error) flatten() map[string]any {
	ctx := maps.Clone(e.Context)
	if ctx == nil {
		ctx = map[string]any{}
	}
	if e.Kind == KindValidation && len(e.Violations) > 0 {
		vs := make([]string, len(e.Violations))
		for i, v := range e.Violations {
			vs[i] = v.String()
		}
		ctx["violations"] = "[" + strings.Join(vs, "; ") + "]"
	}
	return ctx
}

// Structured returns a machine-readable representation of err suitable for
// JSON output and audit logging.
func Structured(err error) map[string]any {
	e, ok := As(err)
	if !ok {
		if err == nil {
			return nil
		}
		return map[string]any{"code": "UNKNOWN_ERROR", "message": err.Error()}
	}

	m := map[string]any{
		"code":      e.Code(),
		"message":   e.Message,
		"context":   maps.Clone(e.Context),
		"timestamp": e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.Cause != nil {
		m["cause"] = e.Cause.Error()
	}

	switch e.Kind {
	case KindRemoteAPI:
		m["statusCode"] = e.StatusCode
		m["body"] = e.Body
	case KindValidation:
		m["reason"] = string(e.Reason)
		m["violations"] = slices.Clone(e.Violations)
	case KindFileSystem:
		m["operation"] = string(e.Op)
		m["path"] = e.Path
	case KindCLI:
		m["command"] = e.Command
		m["exitCode"] = e.ExitCode
	}
	return m
}
