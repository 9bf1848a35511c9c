package rawpf

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gridfmt/casepack/model"
	"github.com/gridfmt/casepack/validate"
)

// Loss records one case field that the raw format cannot represent and that a
// conversion therefore dropped. Table is zero for case-level fields.
type Loss struct {
	Table   model.Table
	Row     int // 0-based record index, -1 for table-level
	Field   string
	Message string
}

func (l Loss) String() string {
	if l.Table == 0 {
		return fmt.Sprintf("case %s: %s", l.Field, l.Message)
	}
	if l.Row < 0 {
		return fmt.Sprintf("%s %s: %s", l.Table, l.Field, l.Message)
	}

	return fmt.Sprintf("%s row %d %s: %s", l.Table, l.Row, l.Field, l.Message)
}

// ToCase converts a decoded raw network into a case and runs it through the
// validation engine.
//
// Loads and fixed shunts have no records of their own in the case model; the
// in-service ones are folded into their bus. Constant current and constant
// admittance load components are evaluated at the bus voltage magnitude, and
// branch line shunts are folded into the terminal buses on the system MVA
// base. Two-winding transformers become branches with the off-nominal tap and
// impedance rebased per the CW and CZ unit codes.
//
// A raw record naming an unknown bus is a conversion error. Error-severity
// violations in the converted case return a validate.FailedError alongside
// the report.
func ToCase(n *Network, opts ...validate.Option) (*model.Case, *validate.Report, error) {
	baseMVA := n.CaseID.SBase

	c := &model.Case{
		Version: model.DefaultVersion,
		BaseMVA: baseMVA,
	}

	index := make(map[int]int, len(n.Buses))
	for i, rb := range n.Buses {
		bt := model.BusType(rb.IDE)
		if !bt.Valid() {
			return nil, nil, fmt.Errorf("raw bus %d: unknown bus type code %d", rb.I, rb.IDE)
		}
		c.Buses = append(c.Buses, model.Bus{
			I:      rb.I,
			Type:   bt,
			Area:   rb.Area,
			Zone:   rb.Zone,
			Vm:     rb.Vm,
			Va:     rb.Va,
			BaseKV: rb.BaseKV,
			Vmax:   rb.NVHi,
			Vmin:   rb.NVLo,
		})
		index[rb.I] = i
	}

	busAt := func(kind string, i int) (*model.Bus, error) {
		j, ok := index[i]
		if !ok {
			return nil, fmt.Errorf("raw %s: unknown bus %d", kind, i)
		}

		return &c.Buses[j], nil
	}

	for _, ld := range n.Loads {
		if ld.Status == 0 {
			continue
		}
		bus, err := busAt("load", ld.I)
		if err != nil {
			return nil, nil, err
		}
		vm := bus.Vm
		bus.Pd += ld.PL + ld.IP*vm + ld.YP*vm*vm
		bus.Qd += ld.QL + ld.IQ*vm - ld.YQ*vm*vm
	}

	for _, fs := range n.FixedShunts {
		if fs.Status == 0 {
			continue
		}
		bus, err := busAt("fixed shunt", fs.I)
		if err != nil {
			return nil, nil, err
		}
		bus.Gs += fs.GL
		bus.Bs += fs.BL
	}

	for _, rg := range n.Gens {
		status := model.OutOfService
		if rg.Stat != 0 {
			status = model.InService
		}
		c.Gens = append(c.Gens, model.Gen{
			Bus:    rg.I,
			Pg:     rg.PG,
			Qg:     rg.QG,
			Qmax:   rg.QT,
			Qmin:   rg.QB,
			Vg:     rg.VS,
			MBase:  rg.MBase,
			Status: status,
			Pmax:   rg.PT,
			Pmin:   rg.PB,
		})
	}

	for _, rb := range n.Branches {
		status := model.OutOfService
		if rb.ST != 0 {
			status = model.InService
		}
		c.Branches = append(c.Branches, model.Branch{
			From:   rb.I,
			To:     rb.J,
			R:      rb.R,
			X:      rb.X,
			B:      rb.B,
			RateA:  rb.RateA,
			RateB:  rb.RateB,
			RateC:  rb.RateC,
			Status: status,
		})

		if rb.ST == 0 {
			continue
		}
		fbus, err := busAt("branch", rb.I)
		if err != nil {
			return nil, nil, err
		}
		fbus.Gs += rb.GI * baseMVA
		fbus.Bs += rb.BI * baseMVA

		tbus, err := busAt("branch", rb.J)
		if err != nil {
			return nil, nil, err
		}
		tbus.Gs += rb.GJ * baseMVA
		tbus.Bs += rb.BJ * baseMVA
	}

	for _, tr := range n.Transformers {
		fbus, err := busAt("transformer", tr.I)
		if err != nil {
			return nil, nil, err
		}
		tbus, err := busAt("transformer", tr.J)
		if err != nil {
			return nil, nil, err
		}

		var tap float64
		switch tr.CW {
		case 1:
			// off-nominal turns ratio in p.u. of winding bus base voltage
			tap = (tr.WindV1 / tr.WindV2) * (tbus.BaseKV / fbus.BaseKV)
		case 2:
			// winding voltage in kV
			tap = (tr.WindV1 / tr.WindV2) * (tr.NomV1 / tr.NomV2)
		default:
			return nil, nil, fmt.Errorf("raw transformer %d-%d: cw (%d) must be 1 or 2", tr.I, tr.J, tr.CW)
		}

		zbBus := fbus.BaseKV * fbus.BaseKV / baseMVA
		zbWdg := tr.NomV1 * tr.NomV1 / tr.SBase12

		var r, x float64
		switch tr.CZ {
		case 1:
			// p.u. on system base
			r, x = tr.R12, tr.X12
		case 2:
			// p.u. on winding one-two base MVA and winding one bus base voltage
			r = tr.R12 * zbWdg / zbBus
			x = tr.X12 * zbWdg / zbBus
		case 3:
			// load loss in watts and impedance magnitude
			r = 1e-6 * tr.R12 / tr.SBase12
			x = math.Sqrt(tr.X12*tr.X12 - tr.R12*tr.R12)
			r *= zbBus / zbWdg
			x *= zbBus / zbWdg
		default:
			return nil, nil, fmt.Errorf("raw transformer %d-%d: cz (%d) must be 1, 2 or 3", tr.I, tr.J, tr.CZ)
		}

		status := model.OutOfService
		if tr.Stat != 0 {
			status = model.InService
		}
		c.Branches = append(c.Branches, model.Branch{
			From:   tr.I,
			To:     tr.J,
			R:      r,
			X:      x,
			RateA:  tr.RatA1,
			RateB:  tr.RatB1,
			RateC:  tr.RatC1,
			Tap:    tap,
			Shift:  tr.Ang1,
			Status: status,
		})
	}

	report := validate.Check(c, opts...)
	if err := report.Err(); err != nil {
		return nil, report, err
	}

	return c, report, nil
}

// DefaultFrequency is the system frequency written into the header record of
// an exported network.
const DefaultFrequency = 60.0

// FromCase converts a case into a raw network.
//
// The mapping reverses ToCase where it can: bus loads and shunts become
// single load and fixed shunt records, dispatchable-load generators become
// negative loads, branches with a tap or shift become two-winding
// transformers (CW and CZ both 1, so their values pass through unscaled).
// Everything the raw format cannot carry comes back as Loss records in
// deterministic order: case-level fields first, then per table by row.
func FromCase(c *model.Case) (*Network, []Loss) {
	var losses []Loss

	if c.Name != "" {
		losses = append(losses, Loss{Field: "casename", Message: "raw format has no case name"})
	}
	if !c.CreatedAt.IsZero() {
		losses = append(losses, Loss{Field: "created_at", Message: "raw format has no timestamp"})
	}
	if c.Version != model.DefaultVersion {
		losses = append(losses, Loss{Field: "version", Message: "raw format has no case format version"})
	}

	n := &Network{
		CaseID: CaseID{
			SBase:  c.BaseMVA,
			Rev:    33,
			BasFrq: DefaultFrequency,
		},
	}

	for _, b := range c.Buses {
		n.Buses = append(n.Buses, RawBus{
			I:      b.I,
			BaseKV: b.BaseKV,
			IDE:    int(b.Type),
			Area:   b.Area,
			Zone:   b.Zone,
			Owner:  0,
			Vm:     b.Vm,
			Va:     b.Va,
			NVHi:   b.Vmax,
			NVLo:   b.Vmin,
		})

		if b.Pd != 0 || b.Qd != 0 {
			n.Loads = append(n.Loads, RawLoad{
				I:      b.I,
				ID:     "1",
				Status: 1,
				PL:     b.Pd,
				QL:     b.Qd,
			})
		}
		if b.Gs != 0 || b.Bs != 0 {
			n.FixedShunts = append(n.FixedShunts, RawFixedShunt{
				I:      b.I,
				ID:     "1",
				Status: 1,
				GL:     b.Gs,
				BL:     b.Bs,
			})
		}
	}

	loadCounts := make(map[int]int, len(n.Loads))
	for _, ld := range n.Loads {
		loadCounts[ld.I] = 1
	}

	// Machine IDs must be unique per bus.
	genCounts := make(map[int]int, len(c.Gens))
	for i, g := range c.Gens {
		if g.IsLoad() {
			loadCounts[g.Bus]++
			n.Loads = append(n.Loads, RawLoad{
				I:      g.Bus,
				ID:     strconv.Itoa(loadCounts[g.Bus]),
				Status: g.Status,
				PL:     -g.Pmin,
				QL:     -g.Qmin,
			})
			losses = append(losses, Loss{
				Table: model.TableGen, Row: i, Field: "pg",
				Message: "dispatchable load exported as a constant power load at its limits",
			})
			continue
		}
		genCounts[g.Bus]++
		n.Gens = append(n.Gens, RawGen{
			I:     g.Bus,
			ID:    strconv.Itoa(genCounts[g.Bus]),
			PG:    g.Pg,
			QG:    g.Qg,
			QT:    g.Qmax,
			QB:    g.Qmin,
			VS:    g.Vg,
			MBase: g.MBase,
			Stat:  g.Status,
			PT:    g.Pmax,
			PB:    g.Pmin,
		})
	}

	lineCkts := make(map[[2]int]int)
	xfmrCkts := make(map[[2]int]int)
	for i, br := range c.Branches {
		if br.AngMin != 0 || br.AngMax != 0 {
			losses = append(losses, Loss{
				Table: model.TableBranch, Row: i, Field: "angmin",
				Message: "raw format has no angle difference bounds",
			})
		}

		if br.Tap == 0 && br.Shift == 0 {
			key := [2]int{br.From, br.To}
			lineCkts[key]++
			n.Branches = append(n.Branches, RawBranch{
				I:     br.From,
				J:     br.To,
				CKT:   strconv.Itoa(lineCkts[key]),
				R:     br.R,
				X:     br.X,
				B:     br.B,
				RateA: br.RateA,
				RateB: br.RateB,
				RateC: br.RateC,
				ST:    br.Status,
			})
			continue
		}

		if br.B != 0 {
			losses = append(losses, Loss{
				Table: model.TableBranch, Row: i, Field: "b",
				Message: "transformer records have no line charging susceptance",
			})
		}
		tap := br.Tap
		if tap == 0 {
			// pure phase shifter, nominal turns ratio
			tap = 1
		}
		key := [2]int{br.From, br.To}
		xfmrCkts[key]++
		n.Transformers = append(n.Transformers, RawTransformer{
			I:       br.From,
			J:       br.To,
			CKT:     strconv.Itoa(xfmrCkts[key]),
			CW:      1,
			CZ:      1,
			Stat:    br.Status,
			R12:     br.R,
			X12:     br.X,
			SBase12: c.BaseMVA,
			WindV1:  tap,
			WindV2:  1,
			Ang1:    br.Shift,
			RatA1:   br.RateA,
			RatB1:   br.RateB,
			RatC1:   br.RateC,
		})
	}

	if len(c.Costs) > 0 {
		losses = append(losses, Loss{
			Table: model.TableGenCost, Row: -1, Field: "gencost",
			Message: fmt.Sprintf("raw format has no cost data, %d record(s) dropped", len(c.Costs)),
		})
	}

	return n, losses
}
