package domain

import (
	"errors"
	"fmt"
)

// Reasons a line can fail rule construction. RuleFormatError wraps exactly one.
var (
	ErrEmptyRule         = errors.New("rule is empty")
	ErrEmptyLabel        = errors.New("rule contains an empty label")
	ErrInvalidLabel      = errors.New("rule contains an invalid label")
	ErrMisplacedWildcard = errors.New("wildcard is only allowed as the first label")
	ErrMarkerConflict    = errors.New("rule cannot be both wildcard and exception")
	ErrRuleTooLong       = errors.New("rule exceeds maximum domain name length")
)

// RuleFormatError reports a non-blank, non-comment line that is not a
// structurally valid suffix rule.
type RuleFormatError struct {
	Text   string // offending line
	Label  string // offending label, when the failure is label specific
	Reason error  // one of the Err* sentinels above
}

func (e *RuleFormatError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("invalid rule %q: %v: %q", e.Text, e.Reason, e.Label)
	}
	return fmt.Sprintf("invalid rule %q: %v", e.Text, e.Reason)
}

func (e *RuleFormatError) Unwrap() error { return e.Reason }

func formatError(text, label string, reason error) *RuleFormatError {
	return &RuleFormatError{Text: text, Label: label, Reason: reason}
}
