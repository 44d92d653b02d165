package parsers

import (
	"bufio"
	"io"
	"os"
	"strings"

	logpkg "github.com/haukened/etld/internal/etld/common/log"
	"github.com/haukened/etld/internal/etld/domain"
)

// ParseReader classifies every line of r, in order, into a fresh ParseResult.
//
// Behavior:
//   - "\n" and "\r\n" terminators are stripped; nothing else is trimmed
//   - comment, whitespace and invalid lines are counted, never fatal
//   - rules keep file order and are stamped with the current PSL section
//   - a read error (including a line longer than bufio.MaxScanTokenSize) is
//     returned unchanged together with a zero ParseResult
func ParseReader(r io.Reader, source string, logger logpkg.Logger) (domain.ParseResult, error) {
	return parseLines(bufio.NewScanner(r), source, logger)
}

// ParseFile opens path, parses it with ParseReader and closes it on every
// exit path. Open and read errors are returned unchanged.
func ParseFile(path string, logger logpkg.Logger) (domain.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		logger.Debug(map[string]any{"source": path, "error": err.Error()}, "parse_rules_open_error")
		return domain.ParseResult{}, err
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f, path, logger)
}

// ParseText parses an in-memory rule list. The scanner buffer is sized to
// the text so no line can be too long; reading a string cannot otherwise fail.
func ParseText(text string, logger logpkg.Logger) domain.ParseResult {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(nil, max(len(text)+1, bufio.MaxScanTokenSize))

	res, err := parseLines(scanner, "text", logger)
	if err != nil {
		logger.Error(map[string]any{"error": err.Error()}, "parse_text_unexpected_error")
	}
	return res
}

func parseLines(scanner *bufio.Scanner, source string, logger logpkg.Logger) (domain.ParseResult, error) {
	var (
		res     domain.ParseResult
		section = domain.SectionNone
		lineNum int
	)

	logger.Debug(map[string]any{"source": source}, "parse_rules_start")
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		lr := ClassifyLine(line)
		switch lr.Kind {
		case domain.LineComment:
			if next, ok := sectionMarker(line, section); ok {
				section = next
				logger.Debug(map[string]any{"line": lineNum, "section": section.String()}, "section_change")
			}
		case domain.LineWhitespace:
			logger.Debug(map[string]any{"line": lineNum}, "skip_whitespace")
		case domain.LineInvalidRule:
			logger.Debug(map[string]any{"line": lineNum, "raw": line, "error": lr.Err.Error()}, "skip_invalid_rule")
		}
		if lr.IsRule() {
			lr.Rule = lr.Rule.WithSection(section)
		}
		res.Add(lr)
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "line": lineNum, "error": err.Error()}, "parse_rules_scan_error")
		return domain.ParseResult{}, err
	}

	logger.Debug(map[string]any{
		"source":     source,
		"lines":      res.Lines(),
		"rules":      len(res.Rules),
		"comments":   res.CommentLines,
		"whitespace": res.WhitespaceLines,
		"invalid":    res.InvalidRules,
	}, "parse_rules_done")
	return res, nil
}
