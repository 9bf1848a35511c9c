package model

import (
	"fmt"

	"github.com/gridfmt/casepack/errs"
)

// Table identifies one of the four record tables of a case.
type Table uint8

const (
	TableBus     Table = 1
	TableGen     Table = 2
	TableBranch  Table = 3
	TableGenCost Table = 4
)

// Tables lists the four tables in their canonical report and archive order.
var Tables = []Table{TableBus, TableGen, TableBranch, TableGenCost}

func (t Table) String() string {
	switch t {
	case TableBus:
		return "bus"
	case TableGen:
		return "gen"
	case TableBranch:
		return "branch"
	case TableGenCost:
		return "gencost"
	default:
		return "unknown"
	}
}

// ParseTable maps a table name to its Table identifier.
//
// Returns errs.ErrUnknownTable for names other than bus, gen, branch, gencost.
func ParseTable(name string) (Table, error) {
	switch name {
	case "bus":
		return TableBus, nil
	case "gen":
		return TableGen, nil
	case "branch":
		return TableBranch, nil
	case "gencost":
		return TableGenCost, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownTable, name)
	}
}
