package chrono

import (
	"fmt"
	"iter"

	"chronoseq/internal/calendar"
)

// OccurrencesWithin enumerates the concrete spans of spec that lie entirely
// within bound, in ascending order.
//
// A yearless spec is re-anchored at every year of bound (and, when the spec
// starts at day level, at every month or ISO week of those years). Anchors
// that do not exist, such as Feb 29 in a common year or week 53 in a short
// ISO year, are skipped. An anchored spec yields at most its own span.
//
// The sequence is lazy, finite and restartable: each call to the returned
// function starts over, and it holds no resources, so consumers may stop at
// any time.
func OccurrencesWithin(spec TimePoint, bound Span) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if spec.set.empty() || bound.IsEmpty() {
			return
		}
		if spec.IsAnchored() {
			if s, err := spec.ToSpan(); err == nil && bound.ContainsSpan(s) {
				yield(s)
			}
			return
		}

		seq := spec.seq
		set, values := spec.set, spec.values
		set.add(Year)
		first, _ := spec.levels()
		period := unitAt(seq, 1)
		if first == dayLevel {
			set.add(period)
		}

		// emit reports whether enumeration should go on.
		emit := func() bool {
			s, ok := spanOf(seq, set, values)
			if !ok {
				return true
			}
			if !s.start.Before(bound.end) {
				return false
			}
			if bound.ContainsSpan(s) {
				return yield(s)
			}
			return true
		}

		firstYear, _, _ := seq.FromOrdinalDay(bound.start.Day)
		lastYear, _, _ := seq.FromOrdinalDay(bound.end.Day)
		for y := firstYear; y <= lastYear; y++ {
			values[Year] = y
			if first != dayLevel {
				if !emit() {
					return
				}
				continue
			}
			for p := 1; p <= seq.PeriodsInYear(y); p++ {
				values[period] = p
				if !emit() {
					return
				}
			}
		}
	}
}

// Take collects at most max spans from seq; max <= 0 means no cap. The
// second result reports whether the cap cut the sequence short.
func Take(seq iter.Seq[Span], max int) ([]Span, bool) {
	var out []Span
	truncated := false
	for s := range seq {
		if max > 0 && len(out) == max {
			truncated = true
			break
		}
		out = append(out, s)
	}
	return out, truncated
}

// Recurrence is a span between two points of the same shape, such as
// "from MH=6 DY=1 to MH=8 DY=31". By default each occurrence runs from the
// start of an occurrence of From to the end of the next occurrence of To,
// so a recurrence may wrap into the next year (Dec 20 to Jan 5).
type Recurrence struct {
	from     TimePoint
	to       TimePoint
	fromEdge Edge
	toEdge   Edge
}

// NewRecurrence checks that from and to share sequence and scope. Anchored
// pairs must not be inverted.
func NewRecurrence(from, to TimePoint) (Recurrence, error) {
	return NewRecurrenceEdges(from, EdgeStart, to, EdgeEnd)
}

// NewRecurrenceEdges is NewRecurrence with explicit edges: each span runs
// from fromEdge of a From occurrence to toEdge of the first To occurrence
// ending up after it.
func NewRecurrenceEdges(from TimePoint, fromEdge Edge, to TimePoint, toEdge Edge) (Recurrence, error) {
	if from.IsZero() || to.IsZero() {
		return Recurrence{}, holeError("recurrence needs two built points")
	}
	if !fromEdge.Valid() || !toEdge.Valid() {
		return Recurrence{}, fmt.Errorf("chrono: invalid recurrence edges %d, %d", fromEdge, toEdge)
	}
	if from.seq != to.seq {
		return Recurrence{}, &Error{
			Kind:    KindInconsistent,
			Message: fmt.Sprintf("recurrence mixes %s and %s points", from.seq, to.seq),
		}
	}
	if from.Scope() != to.Scope() {
		return Recurrence{}, &Error{
			Kind:    KindInconsistent,
			Message: fmt.Sprintf("recurrence ends start at %s and %s", from.Scope(), to.Scope()),
		}
	}
	if from.IsAnchored() {
		a, _ := from.ToSpan()
		b, _ := to.ToSpan()
		start, end := fromEdge.of(a), toEdge.of(b)
		if end.Before(start) {
			return Recurrence{}, &Error{
				Kind:    KindInvertedRange,
				Message: fmt.Sprintf("recurrence ends at %s before it starts at %s", end, start),
			}
		}
	}
	return Recurrence{from: from, to: to, fromEdge: fromEdge, toEdge: toEdge}, nil
}

func (r Recurrence) From() TimePoint { return r.from }
func (r Recurrence) To() TimePoint   { return r.to }
func (r Recurrence) FromEdge() Edge  { return r.fromEdge }
func (r Recurrence) ToEdge() Edge    { return r.toEdge }

// Within enumerates the recurrence's spans contained in bound, ascending.
func (r Recurrence) Within(bound Span) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for s := range OccurrencesWithin(r.from, bound) {
			start := r.fromEdge.of(s)
			end, ok := r.endAfter(s.start, start, bound)
			if !ok {
				return
			}
			if !yield(Span{start: start, end: end}) {
				return
			}
		}
	}
}

// endAfter returns the edge of the first To occurrence starting at or after
// from whose edge lies strictly after start.
func (r Recurrence) endAfter(from, start calendar.Instant, bound Span) (calendar.Instant, bool) {
	for e := range OccurrencesWithin(r.to, Span{start: from, end: bound.end}) {
		if end := r.toEdge.of(e); end.After(start) {
			return end, true
		}
	}
	return calendar.Instant{}, false
}
