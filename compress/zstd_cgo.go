//go:build gozstd

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the payload with libzstd via cgo.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses a Zstandard payload with libzstd via cgo.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
