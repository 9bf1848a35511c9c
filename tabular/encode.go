package tabular

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/gridfmt/casepack/model"
)

// EncodeTable encodes the given table of the case as tabular text.
func EncodeTable(c *model.Case, table model.Table) string {
	switch table {
	case model.TableBus:
		return EncodeBuses(c.Buses)
	case model.TableGen:
		return EncodeGens(c.Gens)
	case model.TableBranch:
		return EncodeBranches(c.Branches)
	case model.TableGenCost:
		return EncodeCosts(c.Costs)
	default:
		return ""
	}
}

// EncodeBuses encodes a bus table. Output is deterministic: fixed column
// order and shortest round-trippable decimal formatting, so encoding the
// decoded table reproduces the same text modulo whitespace.
func EncodeBuses(buses []model.Bus) string {
	return writeTable(busColumns, len(buses), func(i int) []string {
		b := buses[i]
		return []string{
			itoa(b.I), b.Type.Token(),
			ftoa(b.Pd), ftoa(b.Qd), ftoa(b.Gs), ftoa(b.Bs),
			itoa(b.Area), ftoa(b.Vm), ftoa(b.Va), ftoa(b.BaseKV),
			itoa(b.Zone), ftoa(b.Vmax), ftoa(b.Vmin),
		}
	})
}

// EncodeGens encodes a gen table.
func EncodeGens(gens []model.Gen) string {
	return writeTable(genColumns, len(gens), func(i int) []string {
		g := gens[i]
		return []string{
			itoa(g.Bus),
			ftoa(g.Pg), ftoa(g.Qg), ftoa(g.Qmax), ftoa(g.Qmin),
			ftoa(g.Vg), ftoa(g.MBase), itoa(g.Status),
			ftoa(g.Pmax), ftoa(g.Pmin),
		}
	})
}

// EncodeBranches encodes a branch table.
func EncodeBranches(branches []model.Branch) string {
	return writeTable(branchColumns, len(branches), func(i int) []string {
		br := branches[i]
		return []string{
			itoa(br.From), itoa(br.To),
			ftoa(br.R), ftoa(br.X), ftoa(br.B),
			ftoa(br.RateA), ftoa(br.RateB), ftoa(br.RateC),
			ftoa(br.Tap), ftoa(br.Shift), itoa(br.Status),
			ftoa(br.AngMin), ftoa(br.AngMax),
		}
	})
}

// EncodeCosts encodes a gencost table. The value list follows the fixed
// columns as unnamed trailing cells.
func EncodeCosts(costs []model.GenCost) string {
	return writeTable(genCostColumns, len(costs), func(i int) []string {
		gc := costs[i]
		cells := make([]string, 0, len(genCostColumns)+len(gc.Values))
		cells = append(cells,
			itoa(gc.Gen), gc.Model.Token(),
			ftoa(gc.Startup), ftoa(gc.Shutdown), itoa(gc.N),
		)
		for _, v := range gc.Values {
			cells = append(cells, ftoa(v))
		}

		return cells
	})
}

func writeTable(cols []string, rows int, record func(int) []string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// csv.Writer errors only surface on flush; writes to a strings.Builder
	// cannot fail.
	_ = w.Write(cols)
	for i := 0; i < rows; i++ {
		_ = w.Write(record(i))
	}
	w.Flush()

	return sb.String()
}

func itoa(v int) string { return strconv.Itoa(v) }

// ftoa formats a decimal cell in its shortest form that parses back to the
// same float64, keeping textual round trips exact.
func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
