// Package validate provides the resource guards that run before a flag file
// is parsed.
//
// The schema of a flag lives in the schema package and path containment in
// the path package. This package bounds how much data is read at all: a
// single oversized or adversarial file must not cost unbounded memory or
// parse time.
//
// # Validation Functions
//
// FileSize stats a resolved path and checks it against a byte ceiling.
// Content applies the same ceiling to data already in memory (MCP input).
//
// # Error Handling
//
// All failures are *errs.Error values of kind KindValidation. Use
// errs.HasReason to tell them apart:
//
//	if errs.HasReason(err, errs.ReasonFileTooLarge) {
//	    // skip this file, keep going
//	}
package validate

// DefaultMaxFileSize is the ceiling applied when no limit is configured.
const DefaultMaxFileSize int64 = 1 << 20 // 1 MiB
