// Package columnar converts a case between its per-record form and a
// field-major (structure-of-arrays) layout for bulk numeric consumers.
//
// The projection is a mechanical transpose: lossless, order-preserving, and
// free of validation. It assumes its input already satisfies the model
// invariants — in particular that every cost record's value list matches its
// declared count — and ToCase(FromCase(c)) reproduces c exactly.
package columnar

import (
	"time"

	"github.com/gridfmt/casepack/model"
)

// BusColumns holds the bus table field-major, parallel-indexed by record
// position.
type BusColumns struct {
	I      []int
	Type   []model.BusType
	Pd     []float64
	Qd     []float64
	Gs     []float64
	Bs     []float64
	Area   []int
	Vm     []float64
	Va     []float64
	BaseKV []float64
	Zone   []int
	Vmax   []float64
	Vmin   []float64
}

// GenColumns holds the gen table field-major.
type GenColumns struct {
	Bus    []int
	Pg     []float64
	Qg     []float64
	Qmax   []float64
	Qmin   []float64
	Vg     []float64
	MBase  []float64
	Status []int
	Pmax   []float64
	Pmin   []float64
}

// BranchColumns holds the branch table field-major.
type BranchColumns struct {
	From   []int
	To     []int
	R      []float64
	X      []float64
	B      []float64
	RateA  []float64
	RateB  []float64
	RateC  []float64
	Tap    []float64
	Shift  []float64
	Status []int
	AngMin []float64
	AngMax []float64
}

// CostColumns holds the gencost table field-major. The per-record value
// lists are flattened into one Values sequence; record boundaries follow
// from Model and N (n values for a polynomial record, 2n for a piecewise
// one).
type CostColumns struct {
	Gen      []int
	Model    []model.CostModel
	Startup  []float64
	Shutdown []float64
	N        []int
	Values   []float64
}

// Columns is the columnar form of a whole case.
type Columns struct {
	Name      string
	Version   string
	BaseMVA   float64
	CreatedAt time.Time

	Bus    BusColumns
	Gen    GenColumns
	Branch BranchColumns
	Cost   CostColumns
}

// FromCase projects a case into columnar form. The case is not modified and
// shares no memory with the result.
func FromCase(c *model.Case) Columns {
	cols := Columns{
		Name:      c.Name,
		Version:   c.Version,
		BaseMVA:   c.BaseMVA,
		CreatedAt: c.CreatedAt,
	}

	for _, b := range c.Buses {
		cols.Bus.I = append(cols.Bus.I, b.I)
		cols.Bus.Type = append(cols.Bus.Type, b.Type)
		cols.Bus.Pd = append(cols.Bus.Pd, b.Pd)
		cols.Bus.Qd = append(cols.Bus.Qd, b.Qd)
		cols.Bus.Gs = append(cols.Bus.Gs, b.Gs)
		cols.Bus.Bs = append(cols.Bus.Bs, b.Bs)
		cols.Bus.Area = append(cols.Bus.Area, b.Area)
		cols.Bus.Vm = append(cols.Bus.Vm, b.Vm)
		cols.Bus.Va = append(cols.Bus.Va, b.Va)
		cols.Bus.BaseKV = append(cols.Bus.BaseKV, b.BaseKV)
		cols.Bus.Zone = append(cols.Bus.Zone, b.Zone)
		cols.Bus.Vmax = append(cols.Bus.Vmax, b.Vmax)
		cols.Bus.Vmin = append(cols.Bus.Vmin, b.Vmin)
	}

	for _, g := range c.Gens {
		cols.Gen.Bus = append(cols.Gen.Bus, g.Bus)
		cols.Gen.Pg = append(cols.Gen.Pg, g.Pg)
		cols.Gen.Qg = append(cols.Gen.Qg, g.Qg)
		cols.Gen.Qmax = append(cols.Gen.Qmax, g.Qmax)
		cols.Gen.Qmin = append(cols.Gen.Qmin, g.Qmin)
		cols.Gen.Vg = append(cols.Gen.Vg, g.Vg)
		cols.Gen.MBase = append(cols.Gen.MBase, g.MBase)
		cols.Gen.Status = append(cols.Gen.Status, g.Status)
		cols.Gen.Pmax = append(cols.Gen.Pmax, g.Pmax)
		cols.Gen.Pmin = append(cols.Gen.Pmin, g.Pmin)
	}

	for _, br := range c.Branches {
		cols.Branch.From = append(cols.Branch.From, br.From)
		cols.Branch.To = append(cols.Branch.To, br.To)
		cols.Branch.R = append(cols.Branch.R, br.R)
		cols.Branch.X = append(cols.Branch.X, br.X)
		cols.Branch.B = append(cols.Branch.B, br.B)
		cols.Branch.RateA = append(cols.Branch.RateA, br.RateA)
		cols.Branch.RateB = append(cols.Branch.RateB, br.RateB)
		cols.Branch.RateC = append(cols.Branch.RateC, br.RateC)
		cols.Branch.Tap = append(cols.Branch.Tap, br.Tap)
		cols.Branch.Shift = append(cols.Branch.Shift, br.Shift)
		cols.Branch.Status = append(cols.Branch.Status, br.Status)
		cols.Branch.AngMin = append(cols.Branch.AngMin, br.AngMin)
		cols.Branch.AngMax = append(cols.Branch.AngMax, br.AngMax)
	}

	for _, gc := range c.Costs {
		cols.Cost.Gen = append(cols.Cost.Gen, gc.Gen)
		cols.Cost.Model = append(cols.Cost.Model, gc.Model)
		cols.Cost.Startup = append(cols.Cost.Startup, gc.Startup)
		cols.Cost.Shutdown = append(cols.Cost.Shutdown, gc.Shutdown)
		cols.Cost.N = append(cols.Cost.N, gc.N)
		cols.Cost.Values = append(cols.Cost.Values, gc.Values...)
	}

	return cols
}

// ToCase rebuilds the per-record case from columnar form. The result shares
// no memory with the columns.
func (cols Columns) ToCase() *model.Case {
	c := &model.Case{
		Name:      cols.Name,
		Version:   cols.Version,
		BaseMVA:   cols.BaseMVA,
		CreatedAt: cols.CreatedAt,
	}

	for i := range cols.Bus.I {
		c.Buses = append(c.Buses, model.Bus{
			I:      cols.Bus.I[i],
			Type:   cols.Bus.Type[i],
			Pd:     cols.Bus.Pd[i],
			Qd:     cols.Bus.Qd[i],
			Gs:     cols.Bus.Gs[i],
			Bs:     cols.Bus.Bs[i],
			Area:   cols.Bus.Area[i],
			Vm:     cols.Bus.Vm[i],
			Va:     cols.Bus.Va[i],
			BaseKV: cols.Bus.BaseKV[i],
			Zone:   cols.Bus.Zone[i],
			Vmax:   cols.Bus.Vmax[i],
			Vmin:   cols.Bus.Vmin[i],
		})
	}

	for i := range cols.Gen.Bus {
		c.Gens = append(c.Gens, model.Gen{
			Bus:    cols.Gen.Bus[i],
			Pg:     cols.Gen.Pg[i],
			Qg:     cols.Gen.Qg[i],
			Qmax:   cols.Gen.Qmax[i],
			Qmin:   cols.Gen.Qmin[i],
			Vg:     cols.Gen.Vg[i],
			MBase:  cols.Gen.MBase[i],
			Status: cols.Gen.Status[i],
			Pmax:   cols.Gen.Pmax[i],
			Pmin:   cols.Gen.Pmin[i],
		})
	}

	for i := range cols.Branch.From {
		c.Branches = append(c.Branches, model.Branch{
			From:   cols.Branch.From[i],
			To:     cols.Branch.To[i],
			R:      cols.Branch.R[i],
			X:      cols.Branch.X[i],
			B:      cols.Branch.B[i],
			RateA:  cols.Branch.RateA[i],
			RateB:  cols.Branch.RateB[i],
			RateC:  cols.Branch.RateC[i],
			Tap:    cols.Branch.Tap[i],
			Shift:  cols.Branch.Shift[i],
			Status: cols.Branch.Status[i],
			AngMin: cols.Branch.AngMin[i],
			AngMax: cols.Branch.AngMax[i],
		})
	}

	offset := 0
	for i := range cols.Cost.Gen {
		gc := model.GenCost{
			Gen:      cols.Cost.Gen[i],
			Model:    cols.Cost.Model[i],
			Startup:  cols.Cost.Startup[i],
			Shutdown: cols.Cost.Shutdown[i],
			N:        cols.Cost.N[i],
		}
		count := gc.ValueCount()
		gc.Values = append([]float64(nil), cols.Cost.Values[offset:offset+count]...)
		offset += count

		c.Costs = append(c.Costs, gc)
	}

	return c
}

// Len returns the record counts of the four tables in table order.
func (cols Columns) Len() (buses, gens, branches, costs int) {
	return len(cols.Bus.I), len(cols.Gen.Bus), len(cols.Branch.From), len(cols.Cost.Gen)
}
