package ruleset

import (
	"sync"

	logpkg "github.com/haukened/etld/internal/etld/common/log"
	"github.com/haukened/etld/internal/etld/common/utils"
	"github.com/haukened/etld/internal/etld/domain"
)

// repository implements Repository by composing a Store, a Bloom filter
// (via factory) and a LookupCache. Reads go bloom -> cache -> store; writes
// are snapshot swaps.
//
// generation increments on every swap. A lookup only writes its outcome back
// to the cache if no swap happened since it started.
type repository struct {
	mu         sync.RWMutex
	store      Store
	cache      LookupCache
	bloom      BloomFilter
	generation uint64
	factory    BloomFactory
	fpRate     float64
	logger     logpkg.Logger
}

// NewRepository constructs a Repository.
// fpRate is the target false-positive rate for the Bloom filter when rebuilding.
func NewRepository(store Store, cache LookupCache, factory BloomFactory, fpRate float64, logger logpkg.Logger) Repository {
	return &repository{store: store, cache: cache, factory: factory, fpRate: fpRate, logger: logger}
}

// Lookup parses text as a rule and reports whether the snapshot holds a rule
// with the same key. Unparseable text and store errors read as not found.
func (r *repository) Lookup(text string) (domain.Rule, bool) {
	rule, err := domain.NewRule(utils.CanonicalDNSName(text))
	if err != nil {
		r.logger.Debug(map[string]any{"text": text, "error": err.Error()}, "lookup_invalid_rule")
		return domain.Rule{}, false
	}
	key := rule.Key()

	// 1) checkBloom: early miss if definitively absent
	maybe, gen := r.checkBloom(key)
	if !maybe {
		return domain.Rule{}, false
	}
	// 2) checkCache
	if l, ok := r.checkCache(key); ok {
		return l.Rule, l.Found
	}
	// 3) checkStore
	l, err := r.checkStore(key)
	if err != nil {
		return domain.Rule{}, false
	}
	// 4) updateCache
	r.updateCache(key, l, gen)
	return l.Rule, l.Found
}

// Rules returns the snapshot's rules in file order.
func (r *repository) Rules() ([]domain.Rule, error) {
	var out []domain.Rule
	err := r.store.Visit(func(rule domain.Rule) bool {
		out = append(out, rule)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAll rebuilds the store from result, then swaps in a fresh Bloom
// filter and purges the cache under lock.
func (r *repository) UpdateAll(result domain.ParseResult, version uint64, updatedUnix int64) error {
	if err := r.store.RebuildAll(result, version, updatedUnix); err != nil {
		r.logger.Error(map[string]any{"version": version, "error": err.Error()}, "snapshot_rebuild_failed")
		return err
	}

	bf := r.factory.New(uint64(len(result.Rules)), r.fpRate)
	for _, rule := range result.Rules {
		bf.Add(rule.Key())
	}

	r.mu.Lock()
	r.bloom = bf
	r.generation++
	gen := r.generation
	r.cache.Purge()
	r.mu.Unlock()

	r.logger.Debug(map[string]any{"version": version, "rules": len(result.Rules), "generation": gen}, "snapshot_swapped")
	return nil
}

// Stats returns cache, store and Bloom metrics.
func (r *repository) Stats() RepoStats {
	r.mu.RLock()
	var keys uint64
	if r.bloom != nil {
		keys = r.bloom.Keys()
	}
	cs := r.cache.Stats()
	r.mu.RUnlock()
	return RepoStats{Cache: cs, Store: r.store.Stats(), BloomKeys: keys}
}

// checkBloom returns true if the store should be consulted (maybe-present),
// false if the key is definitely absent. Without a filter it returns true.
// The generation the answer belongs to is returned alongside.
func (r *repository) checkBloom(key string) (bool, uint64) {
	r.mu.RLock()
	bf, gen := r.bloom, r.generation
	r.mu.RUnlock()
	if bf == nil {
		return true, gen
	}
	return bf.MightContain(key), gen
}

func (r *repository) checkCache(key string) (domain.RuleLookup, bool) {
	r.mu.RLock()
	l, ok := r.cache.Get(key)
	r.mu.RUnlock()
	return l, ok
}

// checkStore consults the authoritative store. Errors are not cached.
func (r *repository) checkStore(key string) (domain.RuleLookup, error) {
	rule, ok, err := r.store.Get(key)
	if err != nil {
		r.logger.Warn(map[string]any{"key": key, "error": err.Error()}, "store_lookup_failed")
		return domain.NotFound(), err
	}
	if !ok {
		return domain.NotFound(), nil
	}
	return domain.RuleLookup{Found: true, Rule: rule}, nil
}

// updateCache stores l unless a snapshot swap happened after gen was read.
func (r *repository) updateCache(key string, l domain.RuleLookup, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		r.logger.Debug(map[string]any{"key": key, "generation": gen}, "skip_stale_cache_fill")
		return
	}
	r.cache.Put(key, l)
}
