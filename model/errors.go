package model

import (
	"fmt"

	"github.com/gridfmt/casepack/errs"
)

// DomainError reports a single primitive value outside its allowed range at
// construction time. It is fatal to that construction call only.
type DomainError struct {
	Field  string // field name, e.g. "base_mva"
	Value  any    // offending value
	Reason string // what the field requires
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return errs.ErrDomain
}

func domainErr(field string, value any, reason string) error {
	return &DomainError{Field: field, Value: value, Reason: reason}
}
