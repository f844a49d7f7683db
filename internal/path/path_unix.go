//go:build !windows

// path_unix.go provides Unix-specific separator handling (Linux, macOS, etc).
//
// On Unix systems backslashes are valid filename characters, not path
// separators, so filepath.ToSlash leaves them alone. Flag configs are often
// shared with Windows machines, and "..\..\etc" must not slip through as a
// single odd filename, so backslashes are converted explicitly.

package path

import "strings"

// separators rewrites every backslash in p to the Unix separator.
func separators(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
