package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tempestls/pkg/position"
)

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    position.Span
		b    position.Span
		want bool
	}{
		{name: "identical", a: position.NewSpan(0, 4), b: position.NewSpan(0, 4), want: true},
		{name: "nested", a: position.NewSpan(0, 10), b: position.NewSpan(3, 5), want: true},
		{name: "partial", a: position.NewSpan(0, 4), b: position.NewSpan(3, 8), want: true},
		{name: "adjacent", a: position.NewSpan(0, 4), b: position.NewSpan(4, 8), want: false},
		{name: "disjoint", a: position.NewSpan(0, 2), b: position.NewSpan(5, 8), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap should be symmetric")
		})
	}
}

func TestSpanValidity(t *testing.T) {
	assert.True(t, position.NewSpan(0, 1).Valid())
	assert.False(t, position.NewSpan(3, 3).Valid(), "empty span")
	assert.False(t, position.NewSpan(4, 2).Valid(), "reversed span")
	assert.False(t, position.NewSpan(-1, 2).Valid(), "negative start")

	assert.True(t, position.NewSpan(0, 5).Within(5))
	assert.False(t, position.NewSpan(0, 6).Within(5))

	s := position.NewBasicSpan("{{", 7)
	assert.Equal(t, position.NewSpan(7, 9), s)
	assert.Equal(t, position.NewSpan(107, 109), s.Shift(100))
	assert.Equal(t, "{{", s.Text("abcdefg{{ x }}"))
	assert.Equal(t, "", position.NewSpan(10, 40).Text("short"))
}

func TestSpanSet(t *testing.T) {
	set := position.NewSpanSet()
	require.False(t, set.Overlaps(position.NewSpan(0, 100)), "empty set overlaps nothing")

	set.Add(position.NewSpan(20, 30))
	set.Add(position.NewSpan(0, 50)) // long span starting earlier
	set.Add(position.NewSpan(60, 62))
	set.Add(position.NewSpan(5, 5)) // ignored

	require.Equal(t, 3, set.Len())
	assert.Equal(t, []position.Span{
		position.NewSpan(0, 50),
		position.NewSpan(20, 30),
		position.NewSpan(60, 62),
	}, set.Spans())

	tests := []struct {
		name  string
		query position.Span
		want  bool
	}{
		{name: "inside_long_span_after_short_one", query: position.NewSpan(40, 45), want: true},
		{name: "touching_end_of_long_span", query: position.NewSpan(50, 55), want: false},
		{name: "gap", query: position.NewSpan(52, 60), want: false},
		{name: "straddles_last", query: position.NewSpan(61, 70), want: true},
		{name: "after_everything", query: position.NewSpan(62, 90), want: false},
		{name: "at_start", query: position.NewSpan(0, 1), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Overlaps(tt.query))
		})
	}
}

func TestLocatorPlace(t *testing.T) {
	text := "ab\ncdé\n😀x"
	loc := position.NewLocator(text)

	require.Equal(t, 3, loc.LineCount())

	tests := []struct {
		name   string
		offset int
		want   position.Place
	}{
		{name: "start", offset: 0, want: position.Place{Line: 0, Character: 0}},
		{name: "end_of_first_line", offset: 2, want: position.Place{Line: 0, Character: 2}},
		{name: "second_line", offset: 3, want: position.Place{Line: 1, Character: 0}},
		{name: "after_multibyte", offset: 7, want: position.Place{Line: 1, Character: 3}},
		{name: "third_line", offset: 8, want: position.Place{Line: 2, Character: 0}},
		{name: "after_surrogate_pair", offset: 12, want: position.Place{Line: 2, Character: 2}},
		{name: "clamped", offset: 999, want: position.Place{Line: 2, Character: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loc.Place(tt.offset)
			assert.Equal(t, tt.want, got)
			if tt.offset <= len(text) {
				assert.Equal(t, tt.offset, loc.Offset(got), "offset should round trip")
			}
		})
	}
}

func TestLocatorSplitLines(t *testing.T) {
	text := "x {{-- a\nbb\n --}} y"
	loc := position.NewLocator(text)

	pieces := loc.SplitLines(position.NewSpan(2, 17))
	require.Len(t, pieces, 3)
	assert.Equal(t, "{{-- a", pieces[0].Text(text))
	assert.Equal(t, "bb", pieces[1].Text(text))
	assert.Equal(t, " --}}", pieces[2].Text(text))

	assert.Nil(t, loc.SplitLines(position.NewSpan(4, 4)))
}

func TestLocatorLineEndings(t *testing.T) {
	text := "a\r\nbc\rd\n\r\ne"
	loc := position.NewLocator(text)

	require.Equal(t, 5, loc.LineCount())

	spans := []string{"a", "bc", "d", "", "e"}
	for i, want := range spans {
		assert.Equal(t, want, loc.LineSpan(i).Text(text), "line %d", i)
	}

	tests := []struct {
		name   string
		offset int
		want   position.Place
	}{
		{name: "before_crlf", offset: 1, want: position.Place{Line: 0, Character: 1}},
		{name: "inside_crlf", offset: 2, want: position.Place{Line: 0, Character: 1}},
		{name: "after_crlf", offset: 3, want: position.Place{Line: 1, Character: 0}},
		{name: "before_lone_cr", offset: 5, want: position.Place{Line: 1, Character: 2}},
		{name: "after_lone_cr", offset: 6, want: position.Place{Line: 2, Character: 0}},
		{name: "empty_line", offset: 8, want: position.Place{Line: 3, Character: 0}},
		{name: "last_line", offset: 10, want: position.Place{Line: 4, Character: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loc.Place(tt.offset))
		})
	}

	assert.Equal(t, 5, loc.Offset(position.Place{Line: 1, Character: 99}), "characters clamp before the terminator")
}

func TestLocatorSplitLinesCarriageReturns(t *testing.T) {
	text := "x {{-- a\r\nbb\r --}} y"
	loc := position.NewLocator(text)

	pieces := loc.SplitLines(position.NewSpan(2, 18))
	require.Len(t, pieces, 3)
	assert.Equal(t, "{{-- a", pieces[0].Text(text))
	assert.Equal(t, "bb", pieces[1].Text(text))
	assert.Equal(t, " --}}", pieces[2].Text(text))
}
