package semtok

import (
	"sort"
	"strings"

	"github.com/walteh/tempestls/pkg/position"
	"github.com/walteh/tempestls/pkg/settings"
)

// Classify returns the Tempest tokens found in text, ordered by start offset.
// Offsets are relative to the start of text. It returns nothing when cfg is
// disabled or text is blank, and never fails: malformed input yields fewer
// tokens.
//
//	Example:
//	   tokens := Classify(settings.Default(), "{{ $name }}")
//	   // safe-interp-start[0,2) safe-interp-content[3,8) safe-interp-end[9,11)
func Classify(cfg settings.Settings, text string) []Token {
	if !cfg.Enabled || strings.TrimSpace(text) == "" {
		return nil
	}
	return classify(text)
}

// ClassifyAt is Classify for a buffer that starts at base within a larger
// document. Returned spans are document-absolute.
func ClassifyAt(cfg settings.Settings, text string, base int) []Token {
	tokens := Classify(cfg, text)
	for i := range tokens {
		tokens[i].Span = tokens[i].Span.Shift(base)
	}
	return tokens
}

func classify(text string) []Token {
	// comments and directives exclude everything after them
	claimed := position.NewSpanSet()
	// interpolations only exclude each other and directive names
	interpolated := position.NewSpanSet()

	var tokens []Token
	emit := func(c Category, start, end int) {
		span := position.NewSpan(start, end)
		// a span that does not fit the buffer is a bug in a pass, never hand it out
		if !span.Within(len(text)) {
			return
		}
		tokens = append(tokens, Token{Category: c, Span: span})
	}

	for _, p := range passes {
		for _, m := range p.pattern.FindAllStringSubmatchIndex(text, -1) {
			whole := matchSpan(m)
			if claimed.Overlaps(whole) {
				continue
			}
			if p.interpolation && interpolated.Overlaps(whole) {
				continue
			}
			if p.accept != nil && !p.accept(text, m, interpolated) {
				continue
			}
			p.emit(text, m, emit)
			if p.interpolation {
				interpolated.Add(whole)
			} else {
				claimed.Add(whole)
			}
		}
	}

	sortTokens(tokens)

	return tokens
}

func sortTokens(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Span.Start < tokens[j].Span.Start
	})
}

// Flatten cuts every attribute value around the interpolations inside it, so
// that no two of the returned tokens overlap. Clients that cannot stack
// highlights, such as LSP semantic tokens, want this form.
//
//	:if="{{ $x }}"  ->  :if  "  {{  $x  }}  "
func Flatten(tokens []Token) []Token {
	var inner []position.Span
	for _, t := range tokens {
		if t.Category != CategoryAttributeValue {
			inner = append(inner, t.Span)
		}
	}
	sort.SliceStable(inner, func(i, j int) bool {
		return inner[i].Start < inner[j].Start
	})

	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Category != CategoryAttributeValue {
			out = append(out, t)
			continue
		}

		start := t.Span.Start
		for _, s := range inner {
			if s.Start >= t.Span.End {
				break
			}
			if s.End <= start {
				continue
			}
			if s.Start > start {
				out = append(out, Token{Category: t.Category, Span: position.NewSpan(start, s.Start)})
			}
			start = s.End
		}
		if start < t.Span.End {
			out = append(out, Token{Category: t.Category, Span: position.NewSpan(start, t.Span.End)})
		}
	}

	sortTokens(out)

	return out
}

// Filter returns the tokens of the given categories, keeping their order.
func Filter(tokens []Token, categories ...Category) []Token {
	var out []Token
	for _, t := range tokens {
		for _, c := range categories {
			if t.Category == c {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
