package position

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Place is a zero-based line and character. Character counts UTF-16 code
// units, which is what LSP clients expect by default.
type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// Locator converts between byte offsets and line/character places for one
// immutable text. Build a new one whenever the text changes.
type Locator struct {
	text  string
	lines []int // byte offset of the first byte of each line
	ends  []int // byte offset of each line's terminator, or len(text)
}

// NewLocator indexes text. "\n", "\r\n" and a lone "\r" each end a line.
func NewLocator(text string) *Locator {
	lines := []int{0}
	var ends []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			ends = append(ends, i)
			lines = append(lines, i+1)
		case '\r':
			ends = append(ends, i)
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lines = append(lines, i+1)
		}
	}
	ends = append(ends, len(text))
	return &Locator{text: text, lines: lines, ends: ends}
}

func (me *Locator) LineCount() int {
	return len(me.lines)
}

// LineSpan returns the byte span of a line, excluding its terminator.
func (me *Locator) LineSpan(line int) Span {
	if line < 0 || line >= len(me.lines) {
		return Span{}
	}
	return Span{Start: me.lines[line], End: me.ends[line]}
}

// Place returns the line and UTF-16 character of a byte offset. Offsets past the
// end of the text clamp to the end.
func (me *Locator) Place(offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > len(me.text) {
		offset = len(me.text)
	}

	line := sort.Search(len(me.lines), func(i int) bool {
		return me.lines[i] > offset
	}) - 1

	// an offset inside a "\r\n" pair sits at the end of its line
	end := min(offset, me.ends[line])
	return Place{Line: line, Character: utf16Len(me.text[me.lines[line]:end])}
}

// Offset is the inverse of Place. Characters past the end of the line clamp to
// the line end; lines past the end of the text clamp to the end of the text.
func (me *Locator) Offset(p Place) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(me.lines) {
		return len(me.text)
	}

	ls := me.LineSpan(p.Line)
	units := 0
	for i, r := range me.text[ls.Start:ls.End] {
		if units >= p.Character {
			return ls.Start + i
		}
		units += runeUnits(r)
	}
	return ls.End
}

// Range returns the places covering s.
func (me *Locator) Range(s Span) Range {
	return Range{Start: me.Place(s.Start), End: me.Place(s.End)}
}

// SplitLines breaks s into one span per line it touches. Line terminators are
// not included, and empty pieces are dropped.
func (me *Locator) SplitLines(s Span) []Span {
	if !s.Valid() {
		return nil
	}

	first := me.Place(s.Start).Line
	last := me.Place(s.End).Line

	var out []Span
	for line := first; line <= last; line++ {
		ls := me.LineSpan(line)
		piece := Span{Start: max(ls.Start, s.Start), End: min(ls.End, s.End)}
		if piece.Valid() {
			out = append(out, piece)
		}
	}
	return out
}

// UTF16Len returns the number of UTF-16 code units needed to encode the span.
func (me *Locator) UTF16Len(s Span) int {
	return utf16Len(s.Text(me.text))
}

func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		n += runeUnits(r)
		s = s[size:]
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
