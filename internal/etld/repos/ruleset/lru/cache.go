package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/etld/internal/etld/domain"
	"github.com/haukened/etld/internal/etld/repos/ruleset"
)

// lookupCache is an LRU-backed ruleset.LookupCache tracking hits, misses
// and evictions.
type lookupCache struct {
	lru       *lru.Cache[string, domain.RuleLookup]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache always misses and records nothing.
type disabledCache struct{}

// New creates a LookupCache with the given capacity. size <= 0 returns a
// disabled cache.
func New(size int) (ruleset.LookupCache, error) {
	if size <= 0 {
		return disabledCache{}, nil
	}

	c := &lookupCache{capacity: size}
	// NewWithEvict also observes Purge-induced evictions.
	cache, err := lru.NewWithEvict(size, func(string, domain.RuleLookup) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = cache
	return c, nil
}

func (c *lookupCache) Get(key string) (domain.RuleLookup, bool) {
	if v, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return v, true
	}
	c.misses.Add(1)
	return domain.RuleLookup{}, false
}

func (c *lookupCache) Put(key string, l domain.RuleLookup) { c.lru.Add(key, l) }

func (c *lookupCache) Len() int { return c.lru.Len() }

func (c *lookupCache) Purge() { c.lru.Purge() }

func (c *lookupCache) Stats() ruleset.CacheStats {
	return ruleset.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (disabledCache) Get(string) (domain.RuleLookup, bool) { return domain.RuleLookup{}, false }
func (disabledCache) Put(string, domain.RuleLookup)        {}
func (disabledCache) Len() int                             { return 0 }
func (disabledCache) Purge()                               {}
func (disabledCache) Stats() ruleset.CacheStats            { return ruleset.CacheStats{} }

var (
	_ ruleset.LookupCache = (*lookupCache)(nil)
	_ ruleset.LookupCache = disabledCache{}
)
