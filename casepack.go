// Package casepack reads, writes and validates steady-state power-flow case
// descriptions: buses, generators, branches and generator cost curves on a
// common MVA base.
//
// A case travels in one of two interchangeable byte forms:
//
//   - a JSON document, one field-named object for the whole case
//   - a compressed archive, a zip container holding one tabular-text entry
//     per table plus a metadata.json manifest
//
// # Basic Usage
//
// Building and serializing a case:
//
//	import "github.com/gridfmt/casepack"
//
//	c, _ := model.NewCase("three-bus")
//	bus, _ := model.NewBus(1, model.WithBusType(model.BusRef))
//	c.AddBus(bus)
//	// ... add the remaining buses, gens, branches, costs
//
//	data, _ := casepack.SerializeCase(c, true) // archive bytes
//
// Reading it back:
//
//	c, report, err := casepack.ParseCase(data, true)
//	if err != nil {
//	    // structural corruption, bad cells, or error-severity violations
//	}
//	for _, w := range report.Warnings() {
//	    fmt.Println(w.Message)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the model,
// tabular, archive and validate packages, simplifying the most common use
// cases. For fine-grained control (per-table decoding, custom compression,
// validation policies) use those packages directly.
package casepack

import (
	"github.com/gridfmt/casepack/archive"
	"github.com/gridfmt/casepack/model"
	"github.com/gridfmt/casepack/validate"
)

// ParseCase decodes case bytes in either byte form and validates the result.
//
// With isArchive set the data is unpacked as a compressed archive; otherwise
// it is parsed as a JSON document. Either way the decoded case runs through
// the full validation engine: error-severity violations return a
// validate.FailedError together with the report, and on success the report
// still carries any warnings.
func ParseCase(data []byte, isArchive bool, opts ...validate.Option) (*model.Case, *validate.Report, error) {
	if isArchive {
		return archive.Unpack(data, opts...)
	}

	c, err := model.ParseDocument(data)
	if err != nil {
		return nil, nil, err
	}

	report := validate.Check(c, opts...)
	if err := report.Err(); err != nil {
		return nil, report, err
	}

	return c, report, nil
}

// SerializeCase encodes a case into bytes: a compressed archive with
// asArchive set, a JSON document otherwise.
//
// SerializeCase assumes the case is valid; run Validate first on cases built
// by hand. Serialization is deterministic, and parsing the result yields a
// case equal to the input.
func SerializeCase(c *model.Case, asArchive bool, opts ...archive.PackOption) ([]byte, error) {
	if asArchive {
		return archive.Pack(c, opts...)
	}

	return c.MarshalDocument()
}

// Validate runs the two-phase validation engine over a case and returns the
// full report: every violation found, warnings and errors both, in
// deterministic table-row-field order.
func Validate(c *model.Case, opts ...validate.Option) *validate.Report {
	return validate.Check(c, opts...)
}
