package semtok

import (
	"regexp"
	"strings"

	"github.com/walteh/tempestls/pkg/position"
)

var (
	commentPattern     = regexp.MustCompile(`(?s)\{\{--.*?--\}\}`)
	safePattern        = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
	unsafePattern      = regexp.MustCompile(`\{!!\s*([^}]+?)\s*!!\}`)
	conditionalPattern = regexp.MustCompile(`(\s+):(if|elseif|else)(?:\s*=\s*"([^"]*)")?`)
	loopPattern        = regexp.MustCompile(`(\s+):(foreach|forelse)(?:\s*=\s*"([^"]*)")?`)
	attributePattern   = regexp.MustCompile(`(\s+):([A-Za-z0-9_-]+)(?:\s*=\s*"([^"]*)")?`)
)

// emitFunc records one span of a match.
type emitFunc func(c Category, start, end int)

// acceptFunc sees the match and the interpolations found so far.
type acceptFunc func(text string, m []int, interpolated *position.SpanSet) bool

// pass is one recognizer. Passes run in the order of the passes slice.
type pass struct {
	name    string
	pattern *regexp.Regexp
	// interpolation passes record their matches apart from the exclusion set,
	// so a directive value may still contain them
	interpolation bool
	// accept may veto a match before anything is emitted or recorded
	accept acceptFunc
	emit   func(text string, m []int, emit emitFunc)
}

var passes = []pass{
	{
		name:    "comment",
		pattern: commentPattern,
		emit: func(_ string, m []int, emit emitFunc) {
			emit(CategoryComment, m[0], m[1])
		},
	},
	{
		name:          "safe",
		pattern:       safePattern,
		interpolation: true,
		emit:          interpolation(2, CategorySafeInterpStart, CategorySafeInterpContent, CategorySafeInterpEnd),
	},
	{
		name:          "unsafe",
		pattern:       unsafePattern,
		interpolation: true,
		emit:          interpolation(3, CategoryUnsafeInterpStart, CategoryUnsafeInterpContent, CategoryUnsafeInterpEnd),
	},
	{
		name:    "conditional",
		pattern: conditionalPattern,
		accept:  all(endsAtNameBoundary, nameOutsideInterpolation),
		emit:    directive(CategoryConditionalName),
	},
	{
		name:    "loop",
		pattern: loopPattern,
		accept:  all(endsAtNameBoundary, nameOutsideInterpolation),
		emit:    directive(CategoryLoopName),
	},
	{
		name:    "attribute",
		pattern: attributePattern,
		accept:  nameOutsideInterpolation,
		emit:    directive(CategoryAttributeName),
	},
}

// interpolation emits the opening delimiter, the trimmed expression and the
// closing delimiter. Whitespace-only expressions get no content span.
func interpolation(delim int, start, content, end Category) func(string, []int, emitFunc) {
	return func(text string, m []int, emit emitFunc) {
		emit(start, m[0], m[0]+delim)
		if strings.TrimSpace(text[m[2]:m[3]]) != "" {
			emit(content, m[2], m[3])
		}
		emit(end, m[1]-delim, m[1])
	}
}

// directive emits the colon and name, then the quoted value if there is one.
// Group 1 is the leading whitespace, group 2 the name, group 3 the value.
func directive(name Category) func(string, []int, emitFunc) {
	return func(text string, m []int, emit emitFunc) {
		nameStart := m[3]
		nameEnd := m[5]
		emit(name, nameStart, nameEnd)

		if m[6] < 0 {
			return
		}

		open := strings.IndexByte(text[nameEnd:], '"')
		if open < 0 {
			return
		}
		open += nameEnd

		closing := strings.IndexByte(text[open+1:], '"')
		if closing < 0 {
			return
		}
		closing += open + 1

		emit(CategoryAttributeValue, open, closing+1)
	}
}

func all(checks ...acceptFunc) acceptFunc {
	return func(text string, m []int, interpolated *position.SpanSet) bool {
		for _, check := range checks {
			if !check(text, m, interpolated) {
				return false
			}
		}
		return true
	}
}

// nameOutsideInterpolation rejects " :b" in {{ $a :b }}. The value of a
// directive may hold interpolations, its name may not.
func nameOutsideInterpolation(_ string, m []int, interpolated *position.SpanSet) bool {
	return !interpolated.Overlaps(position.NewSpan(m[3], m[5]))
}

// endsAtNameBoundary rejects :iffy or :foreach-item, whose full names belong to
// the generic attribute pass.
func endsAtNameBoundary(text string, m []int, _ *position.SpanSet) bool {
	end := m[5]
	if end >= len(text) {
		return true
	}
	return !isNameByte(text[end])
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}

// matchSpan is the whole range of a match.
func matchSpan(m []int) position.Span {
	return position.NewSpan(m[0], m[1])
}
