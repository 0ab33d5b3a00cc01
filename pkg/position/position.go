package position

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range [Start, End) into a scanned buffer.
type Span struct {
	Start int
	End   int
}

func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// NewBasicSpan returns the span that text occupies when it starts at offset.
func NewBasicSpan(text string, offset int) Span {
	return Span{Start: offset, End: offset + len(text)}
}

// Len returns the number of bytes covered by the span
func (me Span) Len() int {
	return me.End - me.Start
}

// Valid reports whether the span is non-empty and does not start before the buffer.
func (me Span) Valid() bool {
	return me.Start >= 0 && me.Start < me.End
}

// Within reports whether the span fits inside a buffer of the given length.
func (me Span) Within(length int) bool {
	return me.Valid() && me.End <= length
}

// Overlaps uses half-open intersection, so adjacent spans do not overlap.
func (me Span) Overlaps(other Span) bool {
	return me.Start < other.End && other.Start < me.End
}

func (me Span) Contains(offset int) bool {
	return offset >= me.Start && offset < me.End
}

// Shift translates a buffer-relative span into document-absolute offsets.
func (me Span) Shift(base int) Span {
	return Span{Start: me.Start + base, End: me.End + base}
}

// Text returns the slice of buf covered by the span, or "" if it does not fit.
func (me Span) Text(buf string) string {
	if !me.Within(len(buf)) {
		return ""
	}
	return buf[me.Start:me.End]
}

func (me Span) ID() string {
	return fmt.Sprintf("%d:%d", me.Start, me.End)
}

func (me Span) String() string {
	return fmt.Sprintf("[%d,%d)", me.Start, me.End)
}

type SpanArray []Span

func (me SpanArray) ToStrings() []string {
	var texts []string
	for _, s := range me {
		texts = append(texts, s.String())
	}
	return texts
}

func (me SpanArray) String() string {
	return strings.Join(me.ToStrings(), " ")
}
