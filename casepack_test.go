package casepack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gridfmt/casepack/archive"
	"github.com/gridfmt/casepack/compress"
	"github.com/gridfmt/casepack/errs"
	"github.com/gridfmt/casepack/model"
	"github.com/gridfmt/casepack/validate"
)

// buildCase assembles a three-bus case with one generator cost curve, the
// smallest network that exercises every table.
func buildCase(t *testing.T) *model.Case {
	t.Helper()

	c, err := model.NewCase("three-bus", model.WithCreatedAt(time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	b1, err := model.NewBus(1, model.WithBusType(model.BusRef), model.WithBaseKV(138), model.WithVoltageBounds(0.94, 1.06))
	require.NoError(t, err)
	b2, err := model.NewBus(2, model.WithLoad(100, 35), model.WithBaseKV(138), model.WithVoltageBounds(0.94, 1.06))
	require.NoError(t, err)
	b3, err := model.NewBus(3, model.WithBusType(model.BusPV), model.WithBaseKV(69), model.WithVoltageBounds(0.94, 1.06))
	require.NoError(t, err)
	c.AddBus(b1)
	c.AddBus(b2)
	c.AddBus(b3)

	g, err := model.NewGen(1, model.WithOutput(105, 20), model.WithRealBounds(0, 250), model.WithReactiveBounds(-80, 80))
	require.NoError(t, err)
	c.AddGen(g)

	br1, err := model.NewBranch(1, 2, model.WithImpedance(0.01, 0.06, 0.03), model.WithRatings(250, 250, 300))
	require.NoError(t, err)
	br2, err := model.NewBranch(2, 3, model.WithImpedance(0.005, 0.04, 0), model.WithTransformer(1.02, -1.5))
	require.NoError(t, err)
	c.AddBranch(br1)
	c.AddBranch(br2)

	gc, err := model.NewPolynomialCost(1, []float64{0.02, 30, 200}, model.WithStartupShutdown(1500, 0))
	require.NoError(t, err)
	c.AddCost(gc)

	// Bus 3 generates nothing yet; give it a generator so no table is
	// trivially empty of references.
	g3, err := model.NewGen(3, model.WithOutput(40, 5), model.WithRealBounds(0, 100), model.WithReactiveBounds(-40, 40))
	require.NoError(t, err)
	c.AddGen(g3)

	return c
}

func TestArchiveEndToEnd(t *testing.T) {
	c := buildCase(t)

	data, err := SerializeCase(c, true)
	require.NoError(t, err)

	got, report, err := ParseCase(data, true)
	require.NoError(t, err)
	require.Empty(t, report.Violations)
	require.Equal(t, c, got)
}

func TestDocumentEndToEnd(t *testing.T) {
	c := buildCase(t)

	data, err := SerializeCase(c, false)
	require.NoError(t, err)

	got, report, err := ParseCase(data, false)
	require.NoError(t, err)
	require.Empty(t, report.Violations)
	require.Equal(t, c, got)
}

func TestSerializeIsDeterministic(t *testing.T) {
	c := buildCase(t)

	first, err := SerializeCase(c, true)
	require.NoError(t, err)
	second, err := SerializeCase(c, true)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSerializeCompressionOption(t *testing.T) {
	c := buildCase(t)

	data, err := SerializeCase(c, true, archive.WithCompression(compress.TypeLZ4))
	require.NoError(t, err)

	got, _, err := ParseCase(data, true)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestParseCaseRejectsInvalidDocument(t *testing.T) {
	c := buildCase(t)
	c.Gens[1].Bus = 77 // dangling bus reference

	data, err := SerializeCase(c, false)
	require.NoError(t, err)

	_, report, err := ParseCase(data, false)
	require.ErrorIs(t, err, errs.ErrValidationFailed)
	require.NotNil(t, report)
	require.True(t, report.HasErrors())
}

func TestParseCaseRejectsBadCaseMetadata(t *testing.T) {
	t.Run("negative base power", func(t *testing.T) {
		c := buildCase(t)
		c.BaseMVA = -100

		data, err := SerializeCase(c, false)
		require.NoError(t, err)

		_, report, err := ParseCase(data, false)
		require.ErrorIs(t, err, errs.ErrValidationFailed)
		require.Len(t, report.Errors(), 1)
		require.Equal(t, "base_mva", report.Errors()[0].Field)
	})

	t.Run("malformed version", func(t *testing.T) {
		c := buildCase(t)
		c.Version = "banana"

		data, err := SerializeCase(c, false)
		require.NoError(t, err)

		_, report, err := ParseCase(data, false)
		require.ErrorIs(t, err, errs.ErrValidationFailed)
		require.Len(t, report.Errors(), 1)
		require.Equal(t, "version", report.Errors()[0].Field)
	})
}

func TestParseCaseRejectsCorruptArchive(t *testing.T) {
	_, _, err := ParseCase([]byte("garbage"), true)
	require.ErrorIs(t, err, errs.ErrArchiveCorrupt)
}

func TestValidateWrapper(t *testing.T) {
	c := buildCase(t)
	report := Validate(c)
	require.Empty(t, report.Violations)

	c.Buses[0].Type = model.BusPQ // drop the reference bus
	report = Validate(c)
	require.Len(t, report.Warnings(), 1)
	require.False(t, report.HasErrors())

	report = Validate(c, validate.WithReferencePolicy(validate.RefBusError))
	require.True(t, report.HasErrors())
}
