// Package hash computes the entry digests recorded in archive manifests.
package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of the given payload.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Hex returns the digest of data as a fixed-width 16-digit hex string, the
// form stored in metadata.json.
func Hex(data []byte) string {
	return fmt.Sprintf("%016x", Sum(data))
}
