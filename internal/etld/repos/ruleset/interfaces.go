package ruleset

import "github.com/haukened/etld/internal/etld/domain"

// BloomSizer computes Bloom filter parameters from capacity (n) and target
// false-positive rate (p): m bits and k hash functions.
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the pre-filter over rule keys. Keys reports how many keys
// were added.
type BloomFilter interface {
	Add(key string)
	MightContain(key string) bool
	Keys() uint64
}

// BloomFactory builds filters sized for a snapshot.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// LookupCache caches lookup outcomes, misses included, by rule key.
type LookupCache interface {
	Get(key string) (domain.RuleLookup, bool)
	Put(key string, l domain.RuleLookup)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store is the persistent, indexed snapshot of one ParseResult.
//   - RebuildAll: replace the snapshot atomically; first occurrence of a key wins
//   - Get: exact lookup by domain.Rule.Key
//   - Visit: walk rules in file order until fn returns false
type Store interface {
	RebuildAll(result domain.ParseResult, version uint64, updatedUnix int64) error
	Get(key string) (domain.Rule, bool, error)
	Visit(fn func(domain.Rule) bool) error
	Stats() StoreStats
	Purge() error
	Close() error
}

// Repository composes cache, Bloom filter and store.
// Lookup canonicalizes rule text and reports whether an equivalent rule is
// in the snapshot. UpdateAll rebuilds the store, swaps the Bloom filter and
// clears the cache.
type Repository interface {
	Lookup(text string) (domain.Rule, bool)
	Rules() ([]domain.Rule, error)
	UpdateAll(result domain.ParseResult, version uint64, updatedUnix int64) error
	Stats() RepoStats
}
