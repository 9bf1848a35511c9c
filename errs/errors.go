// Package errs defines sentinel errors shared across casepack packages.
//
// Typed errors (model.DomainError, validate.FailedError, archive.CorruptError)
// unwrap to these sentinels, so callers can classify failures with errors.Is
// without importing the package that produced them.
package errs

import "errors"

var (
	// ErrDomain indicates a primitive value was outside its allowed range at
	// construction time (e.g. a non-positive base power).
	ErrDomain = errors.New("value out of domain")

	// ErrValidationFailed indicates a case carried at least one error-severity
	// violation and cannot be returned as valid.
	ErrValidationFailed = errors.New("case validation failed")

	// ErrArchiveCorrupt indicates the archive container is unreadable or
	// internally inconsistent (missing entry, bad manifest, digest mismatch).
	ErrArchiveCorrupt = errors.New("archive corrupt")

	// ErrUnknownTable indicates a table name that is not one of the four case
	// tables (bus, gen, branch, gencost).
	ErrUnknownTable = errors.New("unknown table")
)
