// Package archive packs a case into a single compressed container and
// unpacks it again.
//
// The container is a zip file with a fixed entry set: "metadata.json" (format
// version, base power, timestamp, compression codec, and a manifest of table
// row counts and payload digests) followed by one tabular-text entry per
// table ("bus", "gen", "branch", "gencost"). Table payloads are compressed by
// a codec from the compress package and stored with the zip Store method; the
// codec, not zip, owns compression, so the manifest alone says how to read an
// entry. metadata.json itself is always stored uncompressed so the manifest
// can be read first.
//
// Packing is deterministic: the same case and options produce the same bytes.
// Round-trip fidelity is defined over the decoded case, not raw bytes.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/gridfmt/casepack/compress"
	"github.com/gridfmt/casepack/errs"
	"github.com/gridfmt/casepack/internal/hash"
	"github.com/gridfmt/casepack/model"
	"github.com/gridfmt/casepack/tabular"
	"github.com/gridfmt/casepack/validate"
)

// MetadataEntry is the name of the manifest entry, always present and always
// stored uncompressed.
const MetadataEntry = "metadata.json"

// Metadata is the manifest entry of a case archive.
type Metadata struct {
	// Version is the case format version.
	Version string `json:"version"`

	// BasePower is the system MVA base.
	BasePower float64 `json:"base_power"`

	// Name is the case name.
	Name string `json:"casename,omitempty"`

	// CreatedAt is the optional case creation timestamp.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Compression is the payload codec token (none, zstd, s2, lz4).
	Compression string `json:"compression"`

	// Tables maps each table entry name to its row count.
	Tables map[string]int `json:"tables"`

	// Digests maps each table entry name to the 16-digit hex xxHash64 of its
	// tabular text (before compression).
	Digests map[string]string `json:"digests"`
}

// CorruptError reports a container that is unreadable or internally
// inconsistent. It aborts the whole unpack; no partial recovery is
// meaningful. It unwraps to errs.ErrArchiveCorrupt.
type CorruptError struct {
	Entry  string // offending entry name, empty for container-level problems
	Reason string
}

func (e *CorruptError) Error() string {
	if e.Entry == "" {
		return "archive corrupt: " + e.Reason
	}

	return fmt.Sprintf("archive corrupt: entry %q: %s", e.Entry, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return errs.ErrArchiveCorrupt
}

func corrupt(entry, format string, args ...any) error {
	return &CorruptError{Entry: entry, Reason: fmt.Sprintf(format, args...)}
}

// Fixed modification time for all entries, so packing the same case twice
// yields identical bytes.
var packTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// PackOption configures packing.
type PackOption func(*packConfig)

type packConfig struct {
	compression compress.Type
}

// WithCompression selects the payload codec. The default is Zstd.
func WithCompression(t compress.Type) PackOption {
	return func(cfg *packConfig) { cfg.compression = t }
}

// Pack serializes a valid case into archive bytes.
//
// Pack assumes its input already passed validation; parse paths construct
// cases through validate.Check, and a validated case stays invariant-true by
// construction.
func Pack(c *model.Case, opts ...PackOption) ([]byte, error) {
	cfg := packConfig{compression: compress.TypeZstd}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec, err := compress.ForType(cfg.compression)
	if err != nil {
		return nil, fmt.Errorf("pack case: %w", err)
	}

	meta := Metadata{
		Version:     c.Version,
		BasePower:   c.BaseMVA,
		Name:        c.Name,
		CreatedAt:   c.CreatedAt,
		Compression: cfg.compression.Token(),
		Tables:      make(map[string]int, len(model.Tables)),
		Digests:     make(map[string]string, len(model.Tables)),
	}

	payloads := make([][]byte, 0, len(model.Tables))
	for _, table := range model.Tables {
		text := []byte(tabular.EncodeTable(c, table))
		meta.Tables[table.String()] = c.Rows(table)
		meta.Digests[table.String()] = hash.Hex(text)

		compressed, err := codec.Compress(text)
		if err != nil {
			return nil, fmt.Errorf("compress %s table: %w", table, err)
		}
		payloads = append(payloads, compressed)
	}

	metaBytes, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal archive metadata: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeEntry(zw, MetadataEntry, metaBytes); err != nil {
		return nil, err
	}
	for i, table := range model.Tables {
		if err := writeEntry(zw, table.String(), payloads[i]); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: packTime,
	})
	if err != nil {
		return fmt.Errorf("create archive entry %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %q: %w", name, err)
	}

	return nil
}

// Unpack reads archive bytes back into a validated case.
//
// The manifest is read first, then each table entry is decompressed, checked
// against its digest and row count, decoded, and the assembled case runs
// through the full validation engine. Structural problems return a
// CorruptError; bad cells return a tabular.DecodeError with every cell error
// found; error-severity violations return a validate.FailedError. On success
// the returned report carries any warning-severity violations.
func Unpack(data []byte, opts ...validate.Option) (*model.Case, *validate.Report, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, corrupt("", "not a zip container: %v", err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	metaFile, ok := entries[MetadataEntry]
	if !ok {
		return nil, nil, corrupt(MetadataEntry, "missing required entry")
	}
	metaBytes, err := readEntry(metaFile)
	if err != nil {
		return nil, nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, corrupt(MetadataEntry, "unreadable manifest: %v", err)
	}
	if err := model.CheckVersion(meta.Version); err != nil {
		return nil, nil, corrupt(MetadataEntry, "bad format version %q", meta.Version)
	}

	compression, err := compress.ParseType(meta.Compression)
	if err != nil {
		return nil, nil, corrupt(MetadataEntry, "%v", err)
	}
	codec, err := compress.ForType(compression)
	if err != nil {
		return nil, nil, corrupt(MetadataEntry, "%v", err)
	}

	c := &model.Case{
		Name:      meta.Name,
		Version:   meta.Version,
		BaseMVA:   meta.BasePower,
		CreatedAt: meta.CreatedAt,
	}

	var cellErrs []tabular.CellError
	for _, table := range model.Tables {
		name := table.String()

		f, ok := entries[name]
		if !ok {
			return nil, nil, corrupt(name, "missing required entry")
		}
		payload, err := readEntry(f)
		if err != nil {
			return nil, nil, err
		}

		text, err := codec.Decompress(payload)
		if err != nil {
			return nil, nil, corrupt(name, "decompression failed: %v", err)
		}

		if want, ok := meta.Digests[name]; ok {
			if got := hash.Hex(text); got != want {
				return nil, nil, corrupt(name, "digest mismatch: manifest %s, content %s", want, got)
			}
		}

		before := len(cellErrs)
		cellErrs = append(cellErrs, tabular.DecodeTable(c, table, string(text))...)
		clean := len(cellErrs) == before

		want, ok := meta.Tables[name]
		if !ok {
			return nil, nil, corrupt(MetadataEntry, "manifest lists no row count for table %q", name)
		}
		if got := c.Rows(table); clean && got != want {
			return nil, nil, corrupt(name, "row count mismatch: manifest %d, decoded %d", want, got)
		}
	}

	if len(cellErrs) > 0 {
		return nil, nil, &tabular.DecodeError{Cells: cellErrs}
	}

	report := validate.Check(c, opts...)
	if err := report.Err(); err != nil {
		return nil, report, err
	}

	return c, report, nil
}

// readEntry reads one zip entry fully, releasing the entry handle on every
// path.
func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, corrupt(f.Name, "open failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, corrupt(f.Name, "read failed: %v", err)
	}

	return data, nil
}
