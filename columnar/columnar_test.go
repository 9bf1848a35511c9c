package columnar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gridfmt/casepack/model"
)

func sampleCase(t *testing.T) *model.Case {
	t.Helper()

	c, err := model.NewCase("columnar", model.WithCreatedAt(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	b1, err := model.NewBus(1, model.WithBusType(model.BusRef), model.WithBaseKV(345), model.WithVoltageBounds(0.95, 1.05))
	require.NoError(t, err)
	b2, err := model.NewBus(2, model.WithLoad(120, 45), model.WithShunt(0, 20), model.WithBaseKV(345))
	require.NoError(t, err)
	c.AddBus(b1)
	c.AddBus(b2)

	g, err := model.NewGen(1, model.WithOutput(130, 20), model.WithRealBounds(0, 300), model.WithReactiveBounds(-100, 100))
	require.NoError(t, err)
	c.AddGen(g)

	br, err := model.NewBranch(1, 2, model.WithImpedance(0.005, 0.04, 0.01), model.WithTransformer(1.02, -1.5))
	require.NoError(t, err)
	c.AddBranch(br)

	poly, err := model.NewPolynomialCost(1, []float64{0.01, 22, 150})
	require.NoError(t, err)
	c.AddCost(poly)

	return c
}

func TestRoundTripIsLossless(t *testing.T) {
	c := sampleCase(t)

	got := FromCase(c).ToCase()
	require.Equal(t, c, got)
}

func TestFromCaseLayout(t *testing.T) {
	c := sampleCase(t)
	cols := FromCase(c)

	require.Equal(t, "columnar", cols.Name)
	require.Equal(t, c.BaseMVA, cols.BaseMVA)

	require.Equal(t, []int{1, 2}, cols.Bus.I)
	require.Equal(t, []model.BusType{model.BusRef, model.BusPQ}, cols.Bus.Type)
	require.Equal(t, []float64{0, 120}, cols.Bus.Pd)

	require.Equal(t, []int{1}, cols.Gen.Bus)
	require.Equal(t, []float64{1.02}, cols.Branch.Tap)

	buses, gens, branches, costs := cols.Len()
	require.Equal(t, 2, buses)
	require.Equal(t, 1, gens)
	require.Equal(t, 1, branches)
	require.Equal(t, 1, costs)
}

func TestCostValuesAreFlattenedByRecord(t *testing.T) {
	c := sampleCase(t)

	pw, err := model.NewPWLinearCost(1, []float64{0, 0, 150, 3300})
	require.NoError(t, err)
	c.AddCost(pw)

	cols := FromCase(c)
	require.Equal(t, []int{3, 2}, cols.Cost.N)
	require.Equal(t, []float64{0.01, 22, 150, 0, 0, 150, 3300}, cols.Cost.Values)

	got := cols.ToCase()
	require.Equal(t, c.Costs, got.Costs)
}

func TestRoundTripEmptyCase(t *testing.T) {
	c, err := model.NewCase("empty")
	require.NoError(t, err)

	got := FromCase(c).ToCase()
	require.Equal(t, c, got)
}

func TestToCaseSharesNoMemory(t *testing.T) {
	c := sampleCase(t)
	cols := FromCase(c)
	got := cols.ToCase()

	cols.Bus.Pd[0] = 999
	cols.Cost.Values[0] = 999
	require.Equal(t, 0.0, got.Buses[0].Pd)
	require.Equal(t, 0.01, got.Costs[0].Values[0])
}
