package grow

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/zyedidia/generic/mapset"
)

// NextSeed derives the seed of the next retry: increment, then rehash,
// skipping any seed already in tried.
func NextSeed(seed int64, tried mapset.Set[int64]) int64 {
	var buf [8]byte
	for {
		binary.LittleEndian.PutUint64(buf[:], uint64(seed+1))
		seed = int64(xxhash.Sum64(buf[:]))
		if !tried.Has(seed) {
			return seed
		}
	}
}
