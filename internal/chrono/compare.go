package chrono

import "fmt"

// Compare orders spans by start, then end. It is a total order and does not
// depend on the sequence the spans were derived from.
func Compare(a, b Span) int {
	if c := a.start.Compare(b.start); c != 0 {
		return c
	}
	return a.end.Compare(b.end)
}

// Overlaps reports whether the half-open spans share an instant. Spans that
// only touch (a.End == b.Start) do not overlap.
func Overlaps(a, b Span) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

// Intersect returns the overlapping part of a and b, or NoOverlapError.
func Intersect(a, b Span) (Span, error) {
	if !Overlaps(a, b) {
		return Span{}, &Error{
			Kind:    KindNoOverlap,
			Message: fmt.Sprintf("%s and %s do not overlap", a, b),
		}
	}
	start, end := a.start, a.end
	if b.start.After(start) {
		start = b.start
	}
	if b.end.Before(end) {
		end = b.end
	}
	return Span{start: start, end: end}, nil
}

// Relation describes where a span sits relative to a container span.
type Relation int

const (
	// Before: the span ends at or before the container starts.
	Before Relation = iota + 1
	// After: the span starts at or after the container ends.
	After
	// Inside: the span lies within the container (equal spans included).
	Inside
	// OverlapsStart: the span starts before the container and ends inside.
	OverlapsStart
	// OverlapsEnd: the span starts inside the container and ends after it.
	OverlapsEnd
	// Encloses: the span covers the container and reaches past it.
	Encloses
)

var relationNames = map[Relation]string{
	Before:        "before",
	After:         "after",
	Inside:        "inside",
	OverlapsStart: "overlaps_start",
	OverlapsEnd:   "overlaps_end",
	Encloses:      "encloses",
}

func (r Relation) String() string {
	if name, ok := relationNames[r]; ok {
		return name
	}
	return fmt.Sprintf("relation(%d)", int(r))
}

// Relate classifies span against container.
func Relate(span, container Span) Relation {
	switch {
	case container.ContainsSpan(span):
		return Inside
	case !span.end.After(container.start):
		return Before
	case !span.start.Before(container.end):
		return After
	case span.start.Before(container.start) && span.end.After(container.end):
		return Encloses
	case span.start.Before(container.start):
		return OverlapsStart
	}
	return OverlapsEnd
}
