// Package tabular converts record tables to and from their tabular text
// form: a comma-separated header line naming the fields in fixed order,
// followed by one line per record with typed cell values.
//
// Decoding never aborts on the first bad cell. Every failure is collected as
// a CellError carrying the row, column and raw value, and rows whose cells
// all decode cleanly are still returned, so a caller can report everything
// wrong with a table in one pass.
package tabular

import (
	"fmt"

	"github.com/gridfmt/casepack/model"
)

// Column orders are fixed per table and versioned with the format; changing
// them is a format change.
var (
	busColumns    = []string{"bus_i", "type", "pd", "qd", "gs", "bs", "area", "vm", "va", "base_kv", "zone", "vmax", "vmin"}
	genColumns    = []string{"bus", "pg", "qg", "qmax", "qmin", "vg", "mbase", "status", "pmax", "pmin"}
	branchColumns = []string{"f_bus", "t_bus", "r", "x", "b", "rate_a", "rate_b", "rate_c", "tap", "shift", "status", "angmin", "angmax"}

	// The gencost table carries a variable-length value list after the fixed
	// prefix, so only the prefix is named in the header.
	genCostColumns = []string{"gen", "model", "startup", "shutdown", "n"}
)

// Columns returns the fixed header column names of the given table. For the
// gencost table the names cover only the fixed prefix; data rows append the
// value list as unnamed trailing cells.
func Columns(table model.Table) []string {
	switch table {
	case model.TableBus:
		return busColumns
	case model.TableGen:
		return genColumns
	case model.TableBranch:
		return branchColumns
	case model.TableGenCost:
		return genCostColumns
	default:
		return nil
	}
}

// CellError reports one tabular cell that failed to decode. It is never
// fatal by itself; decoding accumulates cell errors and keeps going.
type CellError struct {
	// Table is the table the cell belongs to.
	Table model.Table

	// Row is the 1-based line number within the table text. The header is
	// row 1, the first record row 2.
	Row int

	// Col is the 1-based column number, or 0 when the problem concerns the
	// whole row (missing or extra columns).
	Col int

	// Column is the column name, when known.
	Column string

	// Value is the raw cell text that failed to decode.
	Value string

	// Reason describes the failure.
	Reason string
}

func (e CellError) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("%s row %d col %d (%s): %s: %q", e.Table, e.Row, e.Col, e.Column, e.Reason, e.Value)
	}

	return fmt.Sprintf("%s row %d: %s", e.Table, e.Row, e.Reason)
}
