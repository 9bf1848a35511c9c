package compress

// ZstdCodec compresses payloads with Zstandard. It gives the best ratio on
// tabular text of the codecs in this package and is the archive default.
//
// Two implementations exist: the pure-Go klauspost/compress encoder (default)
// and a cgo binding to libzstd selected with the "gozstd" build tag.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
