package position

import "sort"

// SpanSet is a sorted set of spans answering overlap queries. Spans that were
// claimed by a higher precedence pass are added here so that later passes can
// discard anything touching them.
type SpanSet struct {
	spans []Span
	// reach[i] is the largest End among spans[:i+1]
	reach []int
}

func NewSpanSet() *SpanSet {
	return &SpanSet{}
}

// Add inserts s keeping the set ordered by start offset. Invalid spans are ignored.
func (me *SpanSet) Add(s Span) {
	if !s.Valid() {
		return
	}
	i := sort.Search(len(me.spans), func(i int) bool {
		return me.spans[i].Start > s.Start
	})
	me.spans = append(me.spans, Span{})
	copy(me.spans[i+1:], me.spans[i:])
	me.spans[i] = s

	me.reach = append(me.reach, 0)
	for j := i; j < len(me.spans); j++ {
		end := me.spans[j].End
		if j > 0 && me.reach[j-1] > end {
			end = me.reach[j-1]
		}
		me.reach[j] = end
	}
}

// Overlaps reports whether s intersects any span in the set.
func (me *SpanSet) Overlaps(s Span) bool {
	if me == nil || len(me.spans) == 0 || !s.Valid() {
		return false
	}

	// only spans starting before s.End can intersect it
	n := sort.Search(len(me.spans), func(i int) bool {
		return me.spans[i].Start >= s.End
	})
	if n == 0 {
		return false
	}
	return me.reach[n-1] > s.Start
}

func (me *SpanSet) Len() int {
	if me == nil {
		return 0
	}
	return len(me.spans)
}

// Spans returns a copy of the set in start order.
func (me *SpanSet) Spans() []Span {
	if me == nil {
		return nil
	}
	out := make([]Span, len(me.spans))
	copy(out, me.spans)
	return out
}
