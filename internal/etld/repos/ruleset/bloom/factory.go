package bloom

import (
	"github.com/haukened/etld/internal/etld/repos/ruleset"
)

// factory implements ruleset.BloomFactory on top of a BloomSizer.
type factory struct {
	sizer ruleset.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() ruleset.BloomFactory { return factory{sizer: NewSizer()} }

// New returns an empty filter sized for capacity rule keys at fpRate.
func (f factory) New(capacity uint64, fpRate float64) ruleset.BloomFilter {
	return newFilter(f.sizer.Size(capacity, fpRate))
}

var (
	_ ruleset.BloomFactory = factory{}
	_ ruleset.BloomFilter  = (*filter)(nil)
)
