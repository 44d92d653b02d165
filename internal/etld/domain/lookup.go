package domain

// RuleLookup is the outcome of looking a rule up in an indexed snapshot.
// Pure value type, safe to cache.
type RuleLookup struct {
	Found bool
	Rule  Rule
}

// NotFound returns a miss.
func NotFound() RuleLookup { return RuleLookup{} }
