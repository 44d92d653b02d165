package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const (
	// WildcardLabel matches any single label in its position.
	WildcardLabel = "*"
	// ExceptionMarker prefixes rules that carve a name out of a wildcard.
	ExceptionMarker = "!"

	maxLabelLength = 63
	maxNameLength  = 253
)

// Section identifies which part of the public suffix list a rule came from.
type Section uint8

const (
	// SectionNone is used when no section marker has been seen (or for
	// rules built outside a list).
	SectionNone Section = iota
	// SectionICANN covers rules between the ICANN begin/end markers.
	SectionICANN
	// SectionPrivate covers rules between the PRIVATE begin/end markers.
	SectionPrivate
)

// String returns a stable string representation of the section.
func (s Section) String() string {
	switch s {
	case SectionNone:
		return "none"
	case SectionICANN:
		return "icann"
	case SectionPrivate:
		return "private"
	default:
		return fmt.Sprintf("Section(%d)", s)
	}
}

// Rule is one parsed suffix rule. It is a value type and must not be
// mutated after construction.
//
// Notes:
//   - Labels are kept as written; a wildcard rule keeps "*" as its first label.
//   - The exception marker is not part of Labels.
//   - Raw is the full line the rule was built from.
type Rule struct {
	Labels    []string
	Wildcard  bool
	Exception bool
	Section   Section
	Raw       string
}

// NewRule parses a single rule line. The line is read up to its first
// whitespace character, so trailing annotations are ignored and a line
// starting with whitespace yields an empty rule.
//
// On failure it returns a *RuleFormatError; callers classify such lines as
// invalid rather than aborting.
func NewRule(line string) (Rule, error) {
	text := ruleToken(line)

	exception := strings.HasPrefix(text, ExceptionMarker)
	if exception {
		text = text[len(ExceptionMarker):]
	}
	if text == "" {
		return Rule{}, formatError(line, "", ErrEmptyRule)
	}

	labels := strings.Split(text, ".")
	wildcard := labels[0] == WildcardLabel
	if wildcard && exception {
		return Rule{}, formatError(line, "", ErrMarkerConflict)
	}

	// dots between labels count toward the name length
	nameLen := len(labels) - 1
	for i, label := range labels {
		if label == "" {
			return Rule{}, formatError(line, "", ErrEmptyLabel)
		}
		if label == WildcardLabel {
			if i == 0 {
				nameLen += len(label)
				continue
			}
			return Rule{}, formatError(line, label, ErrMisplacedWildcard)
		}
		ascii, err := asciiLabel(label)
		if err != nil {
			return Rule{}, formatError(line, label, ErrInvalidLabel)
		}
		nameLen += len(ascii)
	}
	if nameLen > maxNameLength {
		return Rule{}, formatError(line, "", ErrRuleTooLong)
	}

	return Rule{
		Labels:    labels,
		Wildcard:  wildcard,
		Exception: exception,
		Raw:       line,
	}, nil
}

// Name returns the labels joined by dots, including a leading "*" for
// wildcard rules and excluding the exception marker.
func (r Rule) Name() string { return strings.Join(r.Labels, ".") }

// LabelCount returns the number of labels, counting a leading wildcard.
func (r Rule) LabelCount() int { return len(r.Labels) }

// String renders the rule in list syntax.
func (r Rule) String() string {
	if r.Exception {
		return ExceptionMarker + r.Name()
	}
	return r.Name()
}

// Key returns the canonical lookup key: IDNA ASCII lower-case labels joined
// by dots, with the exception marker kept. Two rules that differ only in
// case or in Unicode versus punycode spelling share a key.
func (r Rule) Key() string {
	var b strings.Builder
	if r.Exception {
		b.WriteString(ExceptionMarker)
	}
	for i, label := range r.Labels {
		if i > 0 {
			b.WriteByte('.')
		}
		if label == WildcardLabel {
			b.WriteString(label)
			continue
		}
		ascii, err := asciiLabel(label)
		if err != nil {
			// only reachable for hand-built rules
			ascii = strings.ToLower(label)
		}
		b.WriteString(ascii)
	}
	return b.String()
}

// WithSection returns a copy of r attributed to section s.
func (r Rule) WithSection(s Section) Rule {
	r.Section = s
	return r
}

// ruleToken returns line up to its first whitespace character.
func ruleToken(line string) string {
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		return line[:i]
	}
	return line
}

// asciiLabel converts label through the IDNA lookup profile and checks the
// result is an LDH label: letters, digits and hyphens, not starting or
// ending with a hyphen, 1 to 63 bytes.
func asciiLabel(label string) (string, error) {
	// ToASCII punycodes invalid bytes instead of failing
	if !utf8.ValidString(label) {
		return "", fmt.Errorf("label %q is not valid UTF-8", label)
	}
	ascii, err := idna.Lookup.ToASCII(label)
	if err != nil {
		return "", err
	}
	if len(ascii) == 0 || len(ascii) > maxLabelLength {
		return "", fmt.Errorf("label length %d out of range", len(ascii))
	}
	if ascii[0] == '-' || ascii[len(ascii)-1] == '-' {
		return "", fmt.Errorf("label %q starts or ends with a hyphen", ascii)
	}
	for i := 0; i < len(ascii); i++ {
		if !isLDH(ascii[i]) {
			return "", fmt.Errorf("label %q contains %q", ascii, ascii[i])
		}
	}
	return ascii, nil
}

func isLDH(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
}
