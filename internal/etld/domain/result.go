package domain

// ParseResult aggregates every classified line of one source.
//
// Rules keeps file order; matchers derive precedence from it. The counters
// cover the lines that did not produce a rule, so
// len(Rules)+WhitespaceLines+CommentLines+InvalidRules equals the number of
// lines consumed.
type ParseResult struct {
	Rules           []Rule
	WhitespaceLines int
	CommentLines    int
	InvalidRules    int
}

// Add folds one classification into the result. LineNone is ignored.
func (p *ParseResult) Add(line LineResult) {
	switch line.Kind {
	case LineRule:
		p.Rules = append(p.Rules, line.Rule)
	case LineWhitespace:
		p.WhitespaceLines++
	case LineComment:
		p.CommentLines++
	case LineInvalidRule:
		p.InvalidRules++
	case LineNone:
		// unreachable from a real classification
	}
}

// Lines returns the number of lines folded into the result.
func (p ParseResult) Lines() int {
	return len(p.Rules) + p.WhitespaceLines + p.CommentLines + p.InvalidRules
}

// RuleCounts returns how many of the parsed rules are wildcard and
// exception rules.
func (p ParseResult) RuleCounts() (wildcards, exceptions int) {
	for _, r := range p.Rules {
		if r.Wildcard {
			wildcards++
		}
		if r.Exception {
			exceptions++
		}
	}
	return wildcards, exceptions
}
