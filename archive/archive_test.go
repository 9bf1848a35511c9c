package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/gridfmt/casepack/compress"
	"github.com/gridfmt/casepack/errs"
	"github.com/gridfmt/casepack/internal/hash"
	"github.com/gridfmt/casepack/model"
	"github.com/gridfmt/casepack/tabular"
	"github.com/gridfmt/casepack/validate"
)

func sampleCase(t *testing.T) *model.Case {
	t.Helper()

	c, err := model.NewCase("sample", model.WithCreatedAt(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	b1, err := model.NewBus(1, model.WithBusType(model.BusRef), model.WithBaseKV(138), model.WithVoltageBounds(0.94, 1.06))
	require.NoError(t, err)
	b2, err := model.NewBus(2, model.WithLoad(90, 30), model.WithBaseKV(138), model.WithVoltageBounds(0.94, 1.06))
	require.NoError(t, err)
	c.AddBus(b1)
	c.AddBus(b2)

	g, err := model.NewGen(1, model.WithOutput(95, 12), model.WithRealBounds(0, 200), model.WithReactiveBounds(-60, 60))
	require.NoError(t, err)
	c.AddGen(g)

	br, err := model.NewBranch(1, 2, model.WithImpedance(0.01, 0.06, 0.03), model.WithRatings(250, 250, 300))
	require.NoError(t, err)
	c.AddBranch(br)

	gc, err := model.NewPolynomialCost(1, []float64{0.02, 30, 200}, model.WithStartupShutdown(1500, 0))
	require.NoError(t, err)
	c.AddCost(gc)

	return c
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, compression := range []compress.Type{
		compress.TypeNone, compress.TypeZstd, compress.TypeS2, compress.TypeLZ4,
	} {
		t.Run(compression.Token(), func(t *testing.T) {
			c := sampleCase(t)

			data, err := Pack(c, WithCompression(compression))
			require.NoError(t, err)

			got, report, err := Unpack(data)
			require.NoError(t, err)
			require.Empty(t, report.Violations)
			require.Equal(t, c, got)
		})
	}
}

func TestPackIsDeterministic(t *testing.T) {
	c := sampleCase(t)

	first, err := Pack(c)
	require.NoError(t, err)
	second, err := Pack(c)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestPackWritesManifest(t *testing.T) {
	c := sampleCase(t)

	data, err := Pack(c)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 5)
	require.Equal(t, MetadataEntry, zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()

	var meta Metadata
	require.NoError(t, json.NewDecoder(rc).Decode(&meta))

	require.Equal(t, c.Version, meta.Version)
	require.Equal(t, c.BaseMVA, meta.BasePower)
	require.Equal(t, "sample", meta.Name)
	require.Equal(t, "zstd", meta.Compression)
	require.Equal(t, map[string]int{"bus": 2, "gen": 1, "branch": 1, "gencost": 1}, meta.Tables)
	require.Len(t, meta.Digests, 4)
}

func TestUnpackRejectsNonZip(t *testing.T) {
	_, _, err := Unpack([]byte("not a zip container"))
	require.ErrorIs(t, err, errs.ErrArchiveCorrupt)
}

func TestUnpackRejectsMissingEntry(t *testing.T) {
	data := rewriteArchive(t, sampleCase(t), func(entries map[string][]byte) {
		delete(entries, "branch")
	})

	_, _, err := Unpack(data)
	require.ErrorIs(t, err, errs.ErrArchiveCorrupt)

	var cerr *CorruptError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "branch", cerr.Entry)
}

func TestUnpackRejectsBadManifest(t *testing.T) {
	data := rewriteArchive(t, sampleCase(t), func(entries map[string][]byte) {
		entries[MetadataEntry] = []byte("{ not json")
	})

	_, _, err := Unpack(data)
	require.ErrorIs(t, err, errs.ErrArchiveCorrupt)
}

func TestUnpackRejectsDigestMismatch(t *testing.T) {
	c := sampleCase(t)
	data := rewriteArchive(t, c, func(entries map[string][]byte) {
		// Reattach a valid but different payload under the bus entry.
		text := tabular.EncodeBuses(nil)
		entries["bus"] = mustCompress(t, []byte(text))
	})

	_, _, err := Unpack(data)
	require.ErrorIs(t, err, errs.ErrArchiveCorrupt)

	var cerr *CorruptError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "bus", cerr.Entry)
	require.Contains(t, cerr.Reason, "digest mismatch")
}

func TestUnpackRejectsRowCountMismatch(t *testing.T) {
	c := sampleCase(t)
	data := rewriteArchive(t, c, func(entries map[string][]byte) {
		var meta Metadata
		require.NoError(t, json.Unmarshal(entries[MetadataEntry], &meta))
		meta.Tables["gen"] = 7
		out, err := json.Marshal(&meta)
		require.NoError(t, err)
		entries[MetadataEntry] = out
	})

	_, _, err := Unpack(data)
	require.ErrorIs(t, err, errs.ErrArchiveCorrupt)

	var cerr *CorruptError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "gen", cerr.Entry)
	require.Contains(t, cerr.Reason, "row count mismatch")
}

func TestUnpackSurfacesCellErrors(t *testing.T) {
	c := sampleCase(t)
	data := rewriteArchive(t, c, func(entries map[string][]byte) {
		text := "bus_i,type,pd,qd,gs,bs,area,vm,va,base_kv,zone,vmax,vmin\n" +
			"1,REF,0,0,0,0,1,bogus,0,138,1,1.06,0.94\n"
		payload := mustCompress(t, []byte(text))

		var meta Metadata
		require.NoError(t, json.Unmarshal(entries[MetadataEntry], &meta))
		meta.Digests["bus"] = digestOf(text)
		out, err := json.Marshal(&meta)
		require.NoError(t, err)

		entries[MetadataEntry] = out
		entries["bus"] = payload
	})

	_, _, err := Unpack(data)
	require.Error(t, err)

	var derr *tabular.DecodeError
	require.True(t, errors.As(err, &derr))
	require.Len(t, derr.Cells, 1)
	require.Equal(t, "vm", derr.Cells[0].Column)
}

func TestUnpackRejectsNonPositiveBasePower(t *testing.T) {
	data := rewriteArchive(t, sampleCase(t), func(entries map[string][]byte) {
		var meta Metadata
		require.NoError(t, json.Unmarshal(entries[MetadataEntry], &meta))
		meta.BasePower = -100
		out, err := json.Marshal(&meta)
		require.NoError(t, err)
		entries[MetadataEntry] = out
	})

	_, report, err := Unpack(data)
	require.ErrorIs(t, err, errs.ErrValidationFailed)
	require.NotNil(t, report)
	require.Len(t, report.Errors(), 1)
	require.Equal(t, "base_mva", report.Errors()[0].Field)
}

func TestUnpackRunsValidation(t *testing.T) {
	c := sampleCase(t)
	c.Gens[0].Bus = 99 // dangling reference survives encoding

	data, err := Pack(c)
	require.NoError(t, err)

	_, report, err := Unpack(data)
	require.ErrorIs(t, err, errs.ErrValidationFailed)
	require.NotNil(t, report)
	require.True(t, report.HasErrors())
}

func TestUnpackForwardsValidateOptions(t *testing.T) {
	c := sampleCase(t)
	c.Buses[0].Type = model.BusPQ // no reference bus

	data, err := Pack(c)
	require.NoError(t, err)

	_, _, err = Unpack(data, validate.WithReferencePolicy(validate.RefBusError))
	require.ErrorIs(t, err, errs.ErrValidationFailed)

	_, report, err := Unpack(data, validate.WithReferencePolicy(validate.RefBusIgnore))
	require.NoError(t, err)
	require.Empty(t, report.Violations)
}

// rewriteArchive packs the case, applies mutate to its entry map, and
// reassembles the zip container.
func rewriteArchive(t *testing.T, c *model.Case, mutate func(entries map[string][]byte)) []byte {
	t.Helper()

	data, err := Pack(c)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte, len(zr.File))
	var order []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		entries[f.Name] = buf.Bytes()
		order = append(order, f.Name)
	}

	mutate(entries)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, name := range order {
		payload, ok := entries[name]
		if !ok {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return out.Bytes()
}

func digestOf(text string) string {
	return hash.Hex([]byte(text))
}

func mustCompress(t *testing.T, data []byte) []byte {
	t.Helper()

	codec, err := compress.ForType(compress.TypeZstd)
	require.NoError(t, err)
	out, err := codec.Compress(data)
	require.NoError(t, err)

	return out
}
