// Package compress provides the payload codecs used by the archive codec.
//
// Table entries in a case archive are compressed by one of these codecs
// before being stored; the chosen codec is recorded in the archive's
// metadata.json, so unpacking always knows how to reverse it. Zstd gives the
// best ratio for tabular text, S2 and LZ4 trade ratio for speed, and None
// stores entries verbatim.
package compress

import (
	"fmt"
)

// Type identifies a payload compression codec. Its token form is what
// metadata.json records.
type Type uint8

const (
	TypeNone Type = 1 // no compression
	TypeZstd Type = 2 // Zstandard
	TypeS2   Type = 3 // S2 (Snappy-compatible)
	TypeLZ4  Type = 4 // LZ4 block
)

// Token returns the lowercase token recorded in archive metadata.
func (t Type) Token() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

func (t Type) String() string { return t.Token() }

// ParseType maps a metadata token back to its codec type.
func ParseType(token string) (Type, error) {
	switch token {
	case "none":
		return TypeNone, nil
	case "zstd":
		return TypeZstd, nil
	case "s2":
		return TypeS2, nil
	case "lz4":
		return TypeLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression token %q", token)
	}
}

// Compressor compresses one complete entry payload.
type Compressor interface {
	// Compress returns the compressed form of data. The returned slice is
	// owned by the caller; the input is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same type.
type Decompressor interface {
	// Decompress returns the original payload. It returns an error when the
	// input is corrupted or was produced by a different codec.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All codecs in this package are stateless
// values, safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCodec(),
	TypeZstd: NewZstdCodec(),
	TypeS2:   NewS2Codec(),
	TypeLZ4:  NewLZ4Codec(),
}

// ForType returns the built-in codec of the given type.
func ForType(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", t)
}
