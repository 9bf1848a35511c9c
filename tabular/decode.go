package tabular

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gridfmt/casepack/model"
)

// DecodeTable decodes the tabular text of the given table and appends the
// successfully decoded records to the case. All decode failures are returned
// as cell errors; rows with at least one bad cell contribute no record.
func DecodeTable(c *model.Case, table model.Table, text string) []CellError {
	switch table {
	case model.TableBus:
		buses, errs := DecodeBuses(text)
		c.Buses = append(c.Buses, buses...)

		return errs
	case model.TableGen:
		gens, errs := DecodeGens(text)
		c.Gens = append(c.Gens, gens...)

		return errs
	case model.TableBranch:
		branches, errs := DecodeBranches(text)
		c.Branches = append(c.Branches, branches...)

		return errs
	case model.TableGenCost:
		costs, errs := DecodeCosts(text)
		c.Costs = append(c.Costs, costs...)

		return errs
	default:
		return []CellError{{Table: table, Row: 1, Reason: "unknown table"}}
	}
}

// DecodeBuses decodes a bus table. A header-only table is valid and yields
// zero records.
func DecodeBuses(text string) ([]model.Bus, []CellError) {
	var buses []model.Bus
	errs := scanTable(model.TableBus, text, func(s *rowScanner) {
		b := model.Bus{
			I:      s.Int(0),
			Type:   s.BusType(1),
			Pd:     s.Float(2),
			Qd:     s.Float(3),
			Gs:     s.Float(4),
			Bs:     s.Float(5),
			Area:   s.Int(6),
			Vm:     s.Float(7),
			Va:     s.Float(8),
			BaseKV: s.Float(9),
			Zone:   s.Int(10),
			Vmax:   s.Float(11),
			Vmin:   s.Float(12),
		}
		if s.ok() {
			buses = append(buses, b)
		}
	})

	return buses, errs
}

// DecodeGens decodes a gen table.
func DecodeGens(text string) ([]model.Gen, []CellError) {
	var gens []model.Gen
	errs := scanTable(model.TableGen, text, func(s *rowScanner) {
		g := model.Gen{
			Bus:    s.Int(0),
			Pg:     s.Float(1),
			Qg:     s.Float(2),
			Qmax:   s.Float(3),
			Qmin:   s.Float(4),
			Vg:     s.Float(5),
			MBase:  s.Float(6),
			Status: s.Int(7),
			Pmax:   s.Float(8),
			Pmin:   s.Float(9),
		}
		if s.ok() {
			gens = append(gens, g)
		}
	})

	return gens, errs
}

// DecodeBranches decodes a branch table.
func DecodeBranches(text string) ([]model.Branch, []CellError) {
	var branches []model.Branch
	errs := scanTable(model.TableBranch, text, func(s *rowScanner) {
		br := model.Branch{
			From:   s.Int(0),
			To:     s.Int(1),
			R:      s.Float(2),
			X:      s.Float(3),
			B:      s.Float(4),
			RateA:  s.Float(5),
			RateB:  s.Float(6),
			RateC:  s.Float(7),
			Tap:    s.Float(8),
			Shift:  s.Float(9),
			Status: s.Int(10),
			AngMin: s.Float(11),
			AngMax: s.Float(12),
		}
		if s.ok() {
			branches = append(branches, br)
		}
	})

	return branches, errs
}

// DecodeCosts decodes a gencost table. Rows carry a variable-length value
// list after the fixed columns: n cells for a polynomial model, 2n for a
// piecewise linear one.
func DecodeCosts(text string) ([]model.GenCost, []CellError) {
	var costs []model.GenCost
	errs := scanVariableTable(model.TableGenCost, text, func(s *rowScanner) {
		gc := model.GenCost{
			Gen:      s.Int(0),
			Model:    s.CostModel(1),
			Startup:  s.Float(2),
			Shutdown: s.Float(3),
			N:        s.Int(4),
		}
		if !s.ok() {
			return
		}

		want := gc.N
		if gc.Model == model.CostPWLinear {
			want = 2 * gc.N
		}
		if !s.wantTrailing(len(genCostColumns), want) {
			return
		}

		gc.Values = make([]float64, 0, want)
		for i := 0; i < want; i++ {
			gc.Values = append(gc.Values, s.Float(len(genCostColumns)+i))
		}
		if s.ok() {
			costs = append(costs, gc)
		}
	})

	return costs, errs
}

// scanTable drives decoding of a fixed-width table: header check, then one
// scan call per record row with exact column count enforcement.
func scanTable(table model.Table, text string, scan func(*rowScanner)) []CellError {
	return scanRows(table, text, true, scan)
}

// scanVariableTable is scanTable for tables whose rows may carry trailing
// unnamed cells (gencost); rows only need at least the named columns.
func scanVariableTable(table model.Table, text string, scan func(*rowScanner)) []CellError {
	return scanRows(table, text, false, scan)
}

func scanRows(table model.Table, text string, exact bool, scan func(*rowScanner)) []CellError {
	var errs []CellError

	cols := Columns(table)
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	row := 0
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			errs = append(errs, CellError{Table: table, Row: row, Reason: "unreadable line: " + err.Error()})
			continue
		}

		if row == 1 {
			errs = append(errs, checkHeader(table, cols, cells)...)
			continue
		}

		s := &rowScanner{table: table, row: row, cols: cols, cells: cells, errs: &errs}
		if len(cells) < len(cols) {
			s.rowErr(cols[len(cells)], "missing column")
			continue
		}
		if exact && len(cells) > len(cols) {
			s.rowErr("", "extra column")
			continue
		}

		scan(s)
	}

	if row == 0 {
		errs = append(errs, CellError{Table: table, Row: 1, Reason: "missing header row"})
	}

	return errs
}

// checkHeader verifies the header names one position at a time so that a
// single wrong, missing, duplicated or extra name yields one located error.
func checkHeader(table model.Table, cols, cells []string) []CellError {
	var errs []CellError

	seen := make(map[string]int, len(cells))
	for i, name := range cells {
		if first, dup := seen[name]; dup {
			errs = append(errs, CellError{
				Table: table, Row: 1, Col: i + 1, Column: name, Value: name,
				Reason: "duplicate header column (first at column " + strconv.Itoa(first) + ")",
			})
			continue
		}
		seen[name] = i + 1

		if i < len(cols) && name != cols[i] {
			errs = append(errs, CellError{
				Table: table, Row: 1, Col: i + 1, Column: cols[i], Value: name,
				Reason: "unexpected header column",
			})
		}
	}

	if len(cells) < len(cols) {
		errs = append(errs, CellError{
			Table: table, Row: 1, Col: len(cells) + 1, Column: cols[len(cells)],
			Reason: "missing header column",
		})
	}
	if len(cells) > len(cols) && table != model.TableGenCost {
		errs = append(errs, CellError{
			Table: table, Row: 1, Col: len(cols) + 1, Value: cells[len(cols)],
			Reason: "extra header column",
		})
	}

	return errs
}

// rowScanner decodes the typed cells of one record row, accumulating a
// CellError per failed cell instead of stopping. ok reports whether every
// cell so far decoded cleanly; a row with any failure contributes no record.
type rowScanner struct {
	table  model.Table
	row    int
	cols   []string
	cells  []string
	errs   *[]CellError
	failed bool
}

func (s *rowScanner) ok() bool { return !s.failed }

func (s *rowScanner) colName(col int) string {
	if col < len(s.cols) {
		return s.cols[col]
	}

	return "values"
}

func (s *rowScanner) cellErr(col int, value, reason string) {
	s.failed = true
	*s.errs = append(*s.errs, CellError{
		Table: s.table, Row: s.row, Col: col + 1,
		Column: s.colName(col), Value: value, Reason: reason,
	})
}

func (s *rowScanner) rowErr(column, reason string) {
	s.failed = true
	*s.errs = append(*s.errs, CellError{Table: s.table, Row: s.row, Column: column, Reason: reason})
}

// wantTrailing enforces that exactly want cells follow the fixed prefix.
func (s *rowScanner) wantTrailing(prefix, want int) bool {
	have := len(s.cells) - prefix
	switch {
	case have < want:
		s.rowErr("values", "missing column")
		return false
	case have > want:
		s.rowErr("values", "extra column")
		return false
	default:
		return true
	}
}

// Int decodes the cell at col as an integer.
func (s *rowScanner) Int(col int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s.cells[col]))
	if err != nil {
		s.cellErr(col, s.cells[col], "not an integer")
		return 0
	}

	return v
}

// Float decodes the cell at col as a decimal number.
func (s *rowScanner) Float(col int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.cells[col]), 64)
	if err != nil {
		s.cellErr(col, s.cells[col], "not a number")
		return 0
	}

	return v
}

// BusType decodes the cell at col as a bus type token.
func (s *rowScanner) BusType(col int) model.BusType {
	t, err := model.ParseBusType(strings.TrimSpace(s.cells[col]))
	if err != nil {
		s.cellErr(col, s.cells[col], "unknown bus type token")
		return 0
	}

	return t
}

// CostModel decodes the cell at col as a cost model token.
func (s *rowScanner) CostModel(col int) model.CostModel {
	m, err := model.ParseCostModel(strings.TrimSpace(s.cells[col]))
	if err != nil {
		s.cellErr(col, s.cells[col], "unknown cost model token")
		return 0
	}

	return m
}
