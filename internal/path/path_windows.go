//go:build windows

// path_windows.go provides Windows-specific separator handling.
//
// On Windows both slashes are native separators. filepath.FromSlash turns
// forward slashes into backslashes so segment splitting sees one separator.

package path

import "path/filepath"

// separators rewrites forward slashes in p to the Windows separator.
func separators(p string) string {
	return filepath.FromSlash(p)
}
