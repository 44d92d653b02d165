package parsers

import (
	"strings"

	"github.com/haukened/etld/internal/etld/domain"
)

const commentMarker = "//"

// PSL section markers. They are ordinary comments that also switch the
// section stamped on the rules that follow.
const (
	beginICANN   = "// ===BEGIN ICANN DOMAINS==="
	endICANN     = "// ===END ICANN DOMAINS==="
	beginPrivate = "// ===BEGIN PRIVATE DOMAINS==="
	endPrivate   = "// ===END PRIVATE DOMAINS==="
)

// ClassifyLine decides what a single line (without its terminator) is.
//
// Precedence:
//  1. a line starting with "//" is a comment
//  2. an empty line or one made only of ASCII spaces is whitespace; tabs
//     and other blanks are not special-cased
//  3. anything else is handed to domain.NewRule; a RuleFormatError makes
//     the line an invalid rule, success makes it a rule
//
// It is a pure function and never returns domain.LineNone.
func ClassifyLine(line string) domain.LineResult {
	if strings.HasPrefix(line, commentMarker) {
		return domain.LineResult{Kind: domain.LineComment}
	}
	if isSpaceOnly(line) {
		return domain.LineResult{Kind: domain.LineWhitespace}
	}
	rule, err := domain.NewRule(line)
	if err != nil {
		return domain.LineResult{Kind: domain.LineInvalidRule, Err: err}
	}
	return domain.LineResult{Kind: domain.LineRule, Rule: rule}
}

func isSpaceOnly(line string) bool {
	return strings.TrimLeft(line, " ") == ""
}

// sectionMarker reports whether a comment line opens or closes a PSL
// section, and which section is current after it.
func sectionMarker(line string, current domain.Section) (domain.Section, bool) {
	switch strings.TrimRight(line, " ") {
	case beginICANN:
		return domain.SectionICANN, true
	case beginPrivate:
		return domain.SectionPrivate, true
	case endICANN, endPrivate:
		return domain.SectionNone, true
	default:
		return current, false
	}
}
