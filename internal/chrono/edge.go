package chrono

import (
	"fmt"
	"iter"
	"strings"

	"chronoseq/internal/calendar"
)

// Edge picks one end of a point's span.
type Edge uint8

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

func (e Edge) Valid() bool { return e <= EdgeEnd }

// ParseEdge accepts "start" or "end", case-insensitively.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return EdgeStart, nil
	case "end":
		return EdgeEnd, nil
	}
	return 0, fmt.Errorf("chrono: unknown edge %q", s)
}

func (e Edge) of(s Span) calendar.Instant {
	if e == EdgeEnd {
		return s.end
	}
	return s.start
}

// SpanBetweenEdges spans from fromEdge of from's span to toEdge of to's
// span. Both points must be anchored. SpanBetween is the (EdgeStart,
// EdgeStart) case.
func SpanBetweenEdges(from TimePoint, fromEdge Edge, to TimePoint, toEdge Edge) (Span, error) {
	a, err := from.ToSpan()
	if err != nil {
		return Span{}, err
	}
	b, err := to.ToSpan()
	if err != nil {
		return Span{}, err
	}
	return NewSpan(fromEdge.of(a), toEdge.of(b))
}

// Before enumerates, for every occurrence of tp within bound, the span from
// the start of the period enclosing the occurrence up to its edge. The
// enclosing period is one unit of tp.Over(): "before MH=8 DY=21" runs from
// Jan 1 to Aug 21 of each year. For an anchored point the bound itself is
// the enclosing period. Only spans lying within bound are yielded.
func Before(tp TimePoint, edge Edge, bound Span) iter.Seq[Span] {
	return scoped(tp, bound, func(occ, period Span) Span {
		return Span{start: period.start, end: edge.of(occ)}
	})
}

// After is the mirror of Before: from the edge of each occurrence to the
// end of its enclosing period.
func After(tp TimePoint, edge Edge, bound Span) iter.Seq[Span] {
	return scoped(tp, bound, func(occ, period Span) Span {
		return Span{start: edge.of(occ), end: period.end}
	})
}

func scoped(tp TimePoint, bound Span, build func(occ, period Span) Span) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for occ := range OccurrencesWithin(tp, bound) {
			period, ok := tp.enclosing(occ.start)
			if !ok {
				period = bound
			}
			s := build(occ, period)
			if !bound.ContainsSpan(s) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// enclosing returns the period of tp's Over unit holding i. Anchored points
// have none.
func (tp TimePoint) enclosing(i calendar.Instant) (Span, bool) {
	over, ok := tp.Over()
	if !ok {
		return Span{}, false
	}
	year, a, _ := tp.seq.FromOrdinalDay(i.Day)
	start := calendar.Instant{Day: i.Day}
	switch over.Level() {
	case 0:
		start.Day = tp.seq.OrdinalDay(year, 1, 1)
	case 1:
		start.Day = tp.seq.OrdinalDay(year, a, 1)
	}
	return Span{start: start, end: Shift(start, tp.seq, over, 1)}, true
}
