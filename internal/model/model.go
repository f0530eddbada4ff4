package model

import (
	"fmt"
	"time"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
)

// Point is the rendered form of a chrono.TimePoint.
type Point struct {
	Sequence string `json:"sequence"`
	Elements string `json:"elements"` // e.g. "YR=2023,MH=8,DY=21"

	Scope string `json:"scope"`
	Under string `json:"under"`
	// Over lists the unspecified units above Scope; empty for anchored
	// points.
	Over []string `json:"over,omitempty"`

	Anchored bool `json:"anchored"`
	Complete bool `json:"complete"`
}

// Occurrence represents a single concrete span produced by the engine, or
// one instance of an imported iCalendar event.
type Occurrence struct {
	// UID / Summary are set for occurrences of imported events.
	UID     string `json:"uid,omitempty"`
	Summary string `json:"summary,omitempty"`

	// Start / End are the span bounds as UTC wall times.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Seconds int64 `json:"seconds"`

	// StartDay / StartSec are the ordinal coordinate of Start (day 0 is
	// 1970-01-01).
	StartDay int64 `json:"start_day"`
	StartSec int32 `json:"start_sec"`

	// Date and ISOWeek label the start day in both sequences,
	// e.g. "2023-08-21" and "2023-W34-MO".
	Date    string `json:"date"`
	ISOWeek string `json:"iso_week"`
}

// Comparison describes how two spans relate.
type Comparison struct {
	A Occurrence `json:"a"`
	B Occurrence `json:"b"`

	// Order is -1, 0 or +1 as chrono.Compare(A, B).
	Order    int    `json:"order"`
	Overlaps bool   `json:"overlaps"`
	Relation string `json:"relation"` // A relative to B

	Intersection *Occurrence `json:"intersection,omitempty"`
}

func NewPoint(tp chrono.TimePoint) Point {
	p := Point{
		Sequence: tp.Sequence().String(),
		Elements: FormatElements(tp.Elements()),
		Anchored: tp.IsAnchored(),
		Complete: tp.IsComplete(),
	}
	if tp.IsZero() {
		return p
	}
	p.Scope = tp.Scope().String()
	p.Under = tp.Under().String()
	for _, u := range tp.OverUnits() {
		p.Over = append(p.Over, u.String())
	}
	return p
}

func NewOccurrence(s chrono.Span) Occurrence {
	start := s.Start()
	y, m, d := start.Gregorian()
	iy, w, wd := start.ISO()
	return Occurrence{
		Start:    start.Time(),
		End:      s.End().Time(),
		Seconds:  s.Seconds(),
		StartDay: start.Day,
		StartSec: start.Sec,
		Date:     fmt.Sprintf("%04d-%02d-%02d", y, m, d),
		ISOWeek:  fmt.Sprintf("%04d-W%02d-%s", iy, w, calendar.Weekday(wd)),
	}
}

// Occurrences converts spans in order.
func Occurrences(spans []chrono.Span) []Occurrence {
	out := make([]Occurrence, 0, len(spans))
	for _, s := range spans {
		out = append(out, NewOccurrence(s))
	}
	return out
}

func NewComparison(a, b chrono.Span) Comparison {
	c := Comparison{
		A:        NewOccurrence(a),
		B:        NewOccurrence(b),
		Order:    chrono.Compare(a, b),
		Overlaps: chrono.Overlaps(a, b),
		Relation: chrono.Relate(a, b).String(),
	}
	if in, err := chrono.Intersect(a, b); err == nil {
		o := NewOccurrence(in)
		c.Intersection = &o
	}
	return c
}

// PointSpan pairs a point with its concrete span.
type PointSpan struct {
	Point Point      `json:"point"`
	Span  Occurrence `json:"span"`
}

func NewPointSpan(tp chrono.TimePoint, s chrono.Span) PointSpan {
	return PointSpan{Point: NewPoint(tp), Span: NewOccurrence(s)}
}

// OccurrenceList is the answer to an occurrence query.
type OccurrenceList struct {
	Point       Point        `json:"point"`
	BoundStart  time.Time    `json:"bound_start"`
	BoundEnd    time.Time    `json:"bound_end"`
	Occurrences []Occurrence `json:"occurrences"`
	// Truncated is set when the cap stopped enumeration early.
	Truncated bool `json:"truncated,omitempty"`
}

// ListOccurrences enumerates tp within bound, stopping after max results
// (max <= 0 means no cap).
func ListOccurrences(tp chrono.TimePoint, bound chrono.Span, max int) OccurrenceList {
	spans, truncated := chrono.Take(chrono.OccurrencesWithin(tp, bound), max)
	return OccurrenceList{
		Point:       NewPoint(tp),
		BoundStart:  bound.Start().Time(),
		BoundEnd:    bound.End().Time(),
		Occurrences: Occurrences(spans),
		Truncated:   truncated,
	}
}
