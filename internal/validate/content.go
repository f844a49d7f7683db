// content.go applies the size ceiling to flag JSON that arrives in memory,
// for example a flag pasted into an MCP tool call rather than read from disk.

package validate

import "github.com/jpl-au/flagsync/internal/errs"

// Content checks that data is no larger than maxBytes.
// A maxBytes of zero or less applies DefaultMaxFileSize.
func Content(data []byte, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}
	if size := int64(len(data)); size > maxBytes {
		return errs.Validation(errs.ReasonFileTooLarge, "content exceeds size limit").
			With("size", size).
			With("maxBytes", maxBytes)
	}
	return nil
}
