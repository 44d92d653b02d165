package bloom

import (
	"math"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/etld/internal/etld/repos/ruleset"
)

const (
	defaultFPRate = 0.01
	maxHashes     = math.MaxUint8
)

// sizer derives filter parameters for a snapshot of n rule keys from the
// library estimate. An empty snapshot is sized as one key and a rate outside
// (0, 1) falls back to defaultFPRate.
type sizer struct{}

// NewSizer returns a BloomSizer implementation.
func NewSizer() ruleset.BloomSizer { return sizer{} }

func (sizer) Size(n uint64, p float64) (uint64, uint8) {
	n = max(n, 1)
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		p = defaultFPRate
	}
	m, k := bitsbloom.EstimateParameters(uint(n), p)
	return uint64(max(m, 1)), uint8(min(max(k, 1), maxHashes))
}
