package domain

import "fmt"

// LineKind is the category a single line of a rule list falls into.
type LineKind uint8

const (
	// LineNone is the zero value; a real classification never yields it.
	LineNone LineKind = iota
	LineComment
	LineWhitespace
	LineRule
	LineInvalidRule
)

// String returns a stable string representation of the line kind.
func (k LineKind) String() string {
	switch k {
	case LineNone:
		return "none"
	case LineComment:
		return "comment"
	case LineWhitespace:
		return "whitespace"
	case LineRule:
		return "rule"
	case LineInvalidRule:
		return "invalid_rule"
	default:
		return fmt.Sprintf("LineKind(%d)", k)
	}
}

// LineResult is the outcome of classifying one line.
// Rule is only meaningful for LineRule; Err is only set for LineInvalidRule.
type LineResult struct {
	Kind LineKind
	Rule Rule
	Err  error
}

// IsRule is a convenience accessor.
func (r LineResult) IsRule() bool { return r.Kind == LineRule }
