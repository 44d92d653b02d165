package ruleset

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    // configured capacity (0 for disabled cache)
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// StoreStats reports the snapshot's metadata. The line counters are copied
// from the ParseResult the snapshot was built from.
type StoreStats struct {
	Version         uint64 // snapshot version (0 if never built)
	UpdatedUnix     int64  // last rebuild unix time (0 if never built)
	Rules           uint64 // distinct rule keys stored
	Wildcards       uint64
	Exceptions      uint64
	Duplicates      uint64 // rules dropped because their key was already stored
	CommentLines    uint64
	WhitespaceLines uint64
	InvalidRules    uint64
}

// RepoStats aggregates cache and store metrics.
type RepoStats struct {
	Cache     CacheStats
	Store     StoreStats
	BloomKeys uint64 // keys added to the current Bloom filter
}
