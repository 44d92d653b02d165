package parsers

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/haukened/etld/internal/etld/common/log"
	"github.com/haukened/etld/internal/etld/domain"
)

// lineGen produces single lines (no terminators) mixing every line kind.
func lineGen() gopter.Gen {
	return gen.OneGenOf(
		gen.Const("// comment"),
		gen.Const("//"),
		gen.Const(""),
		gen.Const("   "),
		gen.Const("\t"),
		gen.Const(".."),
		gen.Const("!*.ck"),
		gen.Const("*.ck"),
		gen.Const("!www.ck"),
		gen.Const("// ===BEGIN PRIVATE DOMAINS==="),
		gen.AlphaString(),
		gen.Identifier(),
		gen.AnyString().Map(stripTerminators),
		rawLineGen(),
	)
}

// rawLineGen produces arbitrary bytes, invalid UTF-8 included, minus the
// line terminators.
func rawLineGen() gopter.Gen {
	return gen.SliceOf(gen.UInt8()).Map(func(b []uint8) string {
		return stripTerminators(string(b))
	})
}

func stripTerminators(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestParseText_PropertyLineCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every line is counted exactly once", prop.ForAll(
		func(lines []string) bool {
			res := ParseText(joinLines(lines), log.NewNoopLogger())
			return res.Lines() == len(lines)
		},
		gen.SliceOf(lineGen()),
	))

	properties.TestingRun(t)
}

func TestParseText_PropertyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("parsing the same text twice gives equal results", prop.ForAll(
		func(lines []string) bool {
			text := joinLines(lines)
			a := ParseText(text, log.NewNoopLogger())
			b := ParseText(text, log.NewNoopLogger())
			return reflect.DeepEqual(a, b)
		},
		gen.SliceOf(lineGen()),
	))

	properties.TestingRun(t)
}

func TestClassifyLine_PropertyNeverNone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("classification is total and never panics", prop.ForAll(
		func(line string) bool {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("ClassifyLine(%q) panicked: %v", line, r)
				}
			}()
			lr := ClassifyLine(line)
			if lr.Kind == domain.LineNone {
				return false
			}
			if lr.Kind == domain.LineRule {
				return lr.Rule.LabelCount() >= 1 && lr.Err == nil
			}
			return lr.Rule.LabelCount() == 0
		},
		gen.AnyString(),
	))

	properties.Property("rules are valid UTF-8 with ASCII keys", prop.ForAll(
		func(line string) bool {
			lr := ClassifyLine(line)
			if lr.Kind != domain.LineRule {
				return true
			}
			key := lr.Rule.Key()
			for i := 0; i < len(key); i++ {
				if key[i] >= utf8.RuneSelf {
					return false
				}
			}
			return utf8.ValidString(lr.Rule.Name())
		},
		gen.OneGenOf(rawLineGen(), gen.AnyString(), gen.Identifier()),
	))

	properties.Property("comment marker always wins", prop.ForAll(
		func(rest string) bool {
			return ClassifyLine("//"+rest).Kind == domain.LineComment
		},
		gen.AnyString(),
	))

	properties.Property("runs of spaces are whitespace", prop.ForAll(
		func(n int) bool {
			return ClassifyLine(strings.Repeat(" ", n)).Kind == domain.LineWhitespace
		},
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}
