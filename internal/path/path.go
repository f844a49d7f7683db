// Package path confines untrusted file and directory paths to a trusted
// base directory.
//
// Every path that reaches the filesystem in flagsync (the flags directory,
// the generated output file, individual flag files) passes through Resolve
// first. Resolution is purely lexical: nothing is read from disk, so the
// result depends only on the input, the base and the OS path rules.
//
// Security: containment is decided by re-resolving the relative path and
// comparing it to the resolved path exactly, plus a separator-bounded prefix
// check. A bare prefix test would accept /home/user/project-evil for a base
// of /home/user/project. Inputs carrying a ".." segment are rejected outright,
// even when they would land inside the base. Combined with os.OpenRoot in the
// flags and sync packages, this gives defence-in-depth against escaping the
// project directory.
//
// Normalisation rules:
//   - Backslashes are separators on every OS (mixed input is common in
//     configs shared between Windows and Unix machines)
//   - "." segments and duplicate separators are collapsed
//   - Relative inputs are joined to the base; absolute inputs must already
//     lie inside it
//   - Empty inputs and inputs containing NUL are rejected
package path

import (
	"path/filepath"
	"strings"

	"github.com/jpl-au/flagsync/internal/errs"
)

// Safe is a path proven to resolve inside its base directory.
// The zero value is not a valid path.
type Safe struct {
	resolved string
	base     string
}

// String returns the resolved absolute path.
func (s Safe) String() string { return s.resolved }

// Resolved returns the absolute, cleaned path.
func (s Safe) Resolved() string { return s.resolved }

// Base returns the absolute base directory the path was checked against.
func (s Safe) Base() string { return s.base }

// Rel returns the path relative to its base, using the OS separator.
// The base itself yields ".".
func (s Safe) Rel() string {
	rel, err := filepath.Rel(s.base, s.resolved)
	if err != nil {
		return s.resolved
	}
	return rel
}

// IsZero reports whether s was never produced by Resolve.
func (s Safe) IsZero() bool { return s.resolved == "" }

// Resolve validates input against base and returns the contained path.
//
// Failure modes:
//   - empty input, empty base, NUL in either: ValidationError(invalid_path)
//   - a ".." segment, or any resolution outside base: ValidationError(path_traversal)
//     with input, base and resolvedPath in the error context
func Resolve(input, base string) (Safe, error) {
	if input == "" {
		return Safe{}, invalid(input, base, "path is empty")
	}
	if strings.ContainsRune(input, 0) {
		return Safe{}, invalid(input, base, "path contains a null byte")
	}
	if base == "" {
		return Safe{}, invalid(input, base, "base directory is empty")
	}
	if strings.ContainsRune(base, 0) {
		return Safe{}, invalid(input, base, "base directory contains a null byte")
	}

	absBase, err := filepath.Abs(separators(base))
	if err != nil {
		return Safe{}, invalid(input, base, "base directory cannot be made absolute").Wrap(err)
	}

	in := separators(input)
	if hasParentSegment(in) {
		return Safe{}, traversal(input, absBase, filepath.Join(absBase, in))
	}

	var resolved string
	if filepath.IsAbs(in) {
		resolved = filepath.Clean(in)
	} else {
		resolved = filepath.Join(absBase, in)
	}

	if !contained(absBase, resolved) {
		return Safe{}, traversal(input, absBase, resolved)
	}
	return Safe{resolved: resolved, base: absBase}, nil
}

// ResolveDir is Resolve for paths that name a directory, such as the flags
// directory from configuration. The checks are identical.
func ResolveDir(input, base string) (Safe, error) {
	return Resolve(input, base)
}

// Join resolves name inside the directory s. It is shorthand for
// Resolve(name, s.Resolved()) and carries the same guarantees, so a name
// read from a directory listing cannot step outside s.
func (s Safe) Join(name string) (Safe, error) {
	if s.IsZero() {
		return Safe{}, invalid(name, "", "base directory is empty")
	}
	return Resolve(name, s.resolved)
}

// Escapes reports whether s, with symlinks followed, lies outside its base.
// A path that cannot be evaluated (missing, dangling link) does not escape.
func (s Safe) Escapes() bool {
	target, err := filepath.EvalSymlinks(s.resolved)
	if err != nil {
		return false
	}
	realBase, err := filepath.EvalSymlinks(s.base)
	if err != nil {
		return false
	}
	return !contained(realBase, target)
}

// contained reports whether resolved is base or a descendant of it.
// The round trip through Rel and Join is authoritative; the ".." prefix and
// string checks reject the obvious cases first.
func contained(base, resolved string) bool {
	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false
	}
	if filepath.Join(base, rel) != resolved {
		return false
	}
	if resolved == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(resolved, prefix)
}

// hasParentSegment reports whether any segment of p is "..".
// p must already use the OS separator.
func hasParentSegment(p string) bool {
	for _, seg := range strings.Split(p, string(filepath.Separator)) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func invalid(input, base, msg string) *errs.Error {
	return errs.Validation(errs.ReasonInvalidPath, "invalid path: "+msg).
		With("input", input).
		With("base", base)
}

func traversal(input, base, resolved string) *errs.Error {
	return errs.Validation(errs.ReasonPathTraversal, "path escapes base directory").
		With("input", input).
		With("base", base).
		With("resolvedPath", resolved)
}
