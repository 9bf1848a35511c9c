package tabular

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridfmt/casepack/model"
)

func TestBusRoundTrip(t *testing.T) {
	buses := []model.Bus{
		{I: 1, Type: model.BusRef, Area: 1, Vm: 1.04, Va: 0, BaseKV: 138, Zone: 1, Vmax: 1.06, Vmin: 0.94},
		{I: 2, Type: model.BusPQ, Pd: 21.7, Qd: 12.7, Area: 1, Vm: 1.0, Va: -4.98, BaseKV: 138, Zone: 1, Vmax: 1.06, Vmin: 0.94},
		{I: 3, Type: model.BusPV, Gs: 0, Bs: 19, Area: 2, Vm: 1.01, Va: -12.72, BaseKV: 138, Zone: 1, Vmax: 1.06, Vmin: 0.94},
	}

	text := EncodeBuses(buses)
	got, cellErrs := DecodeBuses(text)
	require.Empty(t, cellErrs)
	require.Equal(t, buses, got)
}

func TestGenRoundTrip(t *testing.T) {
	gens := []model.Gen{
		{Bus: 1, Pg: 232.4, Qg: -16.9, Qmax: 10, Qmin: 0, Vg: 1.06, MBase: 100, Status: 1, Pmax: 332.4, Pmin: 0},
		{Bus: 2, Pg: 40, Qg: 42.4, Qmax: 50, Qmin: -40, Vg: 1.045, MBase: 100, Status: 0, Pmax: 140, Pmin: 0},
	}

	text := EncodeGens(gens)
	got, cellErrs := DecodeGens(text)
	require.Empty(t, cellErrs)
	require.Equal(t, gens, got)
}

func TestBranchRoundTrip(t *testing.T) {
	branches := []model.Branch{
		{From: 1, To: 2, R: 0.01938, X: 0.05917, B: 0.0528, RateA: 250, Status: 1, AngMin: -360, AngMax: 360},
		{From: 2, To: 3, R: 0.04699, X: 0.19797, B: 0.0438, Tap: 0.978, Shift: -2.5, Status: 1},
	}

	text := EncodeBranches(branches)
	got, cellErrs := DecodeBranches(text)
	require.Empty(t, cellErrs)
	require.Equal(t, branches, got)
}

func TestCostRoundTrip(t *testing.T) {
	costs := []model.GenCost{
		{Gen: 1, Model: model.CostPolynomial, Startup: 1500, N: 3, Values: []float64{0.0430293, 20, 0}},
		{Gen: 2, Model: model.CostPWLinear, N: 2, Values: []float64{0, 0, 100, 2500}},
	}

	text := EncodeCosts(costs)
	got, cellErrs := DecodeCosts(text)
	require.Empty(t, cellErrs)
	require.Equal(t, costs, got)
}

func TestHeaderOnlyTableIsValid(t *testing.T) {
	for _, table := range model.Tables {
		t.Run(table.String(), func(t *testing.T) {
			c := &model.Case{}
			text := EncodeTable(c, table)

			got := &model.Case{}
			cellErrs := DecodeTable(got, table, text)
			require.Empty(t, cellErrs)
			require.Equal(t, 0, got.Rows(table))
		})
	}
}

func TestDecodeAccumulatesEveryCellError(t *testing.T) {
	// Row 2 has a bad float, row 4 is short, row 5 has an unknown enum token.
	// The three clean rows still decode.
	text := "bus_i,type,pd,qd,gs,bs,area,vm,va,base_kv,zone,vmax,vmin\n" +
		"1,REF,0,0,0,0,1,oops,0,138,1,1.06,0.94\n" +
		"2,PQ,21.7,12.7,0,0,1,1,-4.98,138,1,1.06,0.94\n" +
		"3,PV,0,0,0,19,1,1.01\n" +
		"4,SLACK,0,0,0,0,1,1,0,138,1,1.06,0.94\n" +
		"5,PQ,7.6,1.6,0,0,1,1,-12,138,1,1.06,0.94\n" +
		"6,PQ,11.2,7.5,0,0,1,1,-10,138,1,1.06,0.94\n"

	buses, cellErrs := DecodeBuses(text)
	require.Len(t, cellErrs, 3)

	require.Equal(t, 2, cellErrs[0].Row)
	require.Equal(t, "vm", cellErrs[0].Column)
	require.Equal(t, "oops", cellErrs[0].Value)
	require.Equal(t, "not a number", cellErrs[0].Reason)

	require.Equal(t, 4, cellErrs[1].Row)
	require.Equal(t, "missing column", cellErrs[1].Reason)

	require.Equal(t, 5, cellErrs[2].Row)
	require.Equal(t, "type", cellErrs[2].Column)
	require.Equal(t, "unknown bus type token", cellErrs[2].Reason)

	require.Len(t, buses, 3)
	require.Equal(t, []int{2, 5, 6}, []int{buses[0].I, buses[1].I, buses[2].I})
}

func TestDecodeRejectsExtraColumn(t *testing.T) {
	text := "bus,pg,qg,qmax,qmin,vg,mbase,status,pmax,pmin\n" +
		"1,0,0,10,-10,1,100,1,50,0,999\n"

	gens, cellErrs := DecodeGens(text)
	require.Empty(t, gens)
	require.Len(t, cellErrs, 1)
	require.Equal(t, 2, cellErrs[0].Row)
	require.Equal(t, "extra column", cellErrs[0].Reason)
}

func TestDecodeHeaderErrors(t *testing.T) {
	t.Run("unexpected name", func(t *testing.T) {
		text := "bus_nr,type,pd,qd,gs,bs,area,vm,va,base_kv,zone,vmax,vmin\n"
		_, cellErrs := DecodeBuses(text)
		require.Len(t, cellErrs, 1)
		require.Equal(t, 1, cellErrs[0].Row)
		require.Equal(t, 1, cellErrs[0].Col)
		require.Equal(t, "unexpected header column", cellErrs[0].Reason)
	})

	t.Run("duplicate name", func(t *testing.T) {
		text := "bus_i,type,pd,pd,gs,bs,area,vm,va,base_kv,zone,vmax,vmin\n"
		_, cellErrs := DecodeBuses(text)
		require.NotEmpty(t, cellErrs)
		require.Contains(t, cellErrs[0].Reason, "duplicate header column")
	})

	t.Run("missing trailing name", func(t *testing.T) {
		text := "bus_i,type,pd,qd,gs,bs,area,vm,va,base_kv,zone,vmax\n"
		_, cellErrs := DecodeBuses(text)
		require.Len(t, cellErrs, 1)
		require.Equal(t, "vmin", cellErrs[0].Column)
		require.Equal(t, "missing header column", cellErrs[0].Reason)
	})

	t.Run("empty text", func(t *testing.T) {
		_, cellErrs := DecodeBuses("")
		require.Len(t, cellErrs, 1)
		require.Equal(t, "missing header row", cellErrs[0].Reason)
	})
}

func TestDecodeCostsTrailingValues(t *testing.T) {
	t.Run("missing values", func(t *testing.T) {
		text := "gen,model,startup,shutdown,n\n" +
			"1,POLYNOMIAL,0,0,3,0.04,20\n"
		costs, cellErrs := DecodeCosts(text)
		require.Empty(t, costs)
		require.Len(t, cellErrs, 1)
		require.Equal(t, "values", cellErrs[0].Column)
		require.Equal(t, "missing column", cellErrs[0].Reason)
	})

	t.Run("piecewise needs doubled values", func(t *testing.T) {
		text := "gen,model,startup,shutdown,n\n" +
			"1,PWLINEAR,0,0,2,0,0,100,2500\n"
		costs, cellErrs := DecodeCosts(text)
		require.Empty(t, cellErrs)
		require.Len(t, costs, 1)
		require.Equal(t, []float64{0, 0, 100, 2500}, costs[0].Values)
	})
}

func TestEncodeTableUsesExactFloatText(t *testing.T) {
	buses := []model.Bus{{I: 1, Type: model.BusPQ, Pd: 0.1, Vm: 1.0000000001}}
	text := EncodeBuses(buses)

	got, cellErrs := DecodeBuses(text)
	require.Empty(t, cellErrs)
	require.Equal(t, 0.1, got[0].Pd)
	require.Equal(t, 1.0000000001, got[0].Vm)
}

func TestCellErrorMessage(t *testing.T) {
	e := CellError{Table: model.TableBus, Row: 3, Col: 8, Column: "vm", Value: "oops", Reason: "not a number"}
	require.Contains(t, e.Error(), "bus")
	require.Contains(t, e.Error(), "vm")
	require.Contains(t, e.Error(), "not a number")
}
