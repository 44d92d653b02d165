package bloom

import (
	"sync"
	"sync/atomic"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"
)

// filter holds the rule keys of one snapshot. Keys are added while the
// snapshot is built; lookups read it concurrently once it is published.
type filter struct {
	mu   sync.RWMutex
	bf   *bitsbloom.BloomFilter
	keys atomic.Uint64
}

func newFilter(m uint64, k uint8) *filter {
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}

func (f *filter) Add(key string) {
	f.mu.Lock()
	f.bf.AddString(key)
	f.mu.Unlock()
	f.keys.Add(1)
}

func (f *filter) MightContain(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.TestString(key)
}

// Keys counts Add calls, duplicates included.
func (f *filter) Keys() uint64 { return f.keys.Load() }
