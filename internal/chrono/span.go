package chrono

import (
	"fmt"

	"chronoseq/internal/calendar"
)

// Span is a half-open range [Start, End) on the ordinal coordinate.
// Start <= End always holds; a span is empty only when built explicitly
// from two equal instants.
type Span struct {
	start calendar.Instant
	end   calendar.Instant
}

// NewSpan builds [start, end). It fails with InvertedRangeError when end is
// before start.
func NewSpan(start, end calendar.Instant) (Span, error) {
	if end.Before(start) {
		return Span{}, &Error{
			Kind:    KindInvertedRange,
			Message: fmt.Sprintf("end %s is before start %s", end, start),
		}
	}
	return Span{start: start, end: end}, nil
}

// SpanBetween spans from the start of from to the start of to. For complete
// points those are the instants themselves. Both points must be anchored.
func SpanBetween(from, to TimePoint) (Span, error) {
	return SpanBetweenEdges(from, EdgeStart, to, EdgeStart)
}

func (s Span) Start() calendar.Instant { return s.start }
func (s Span) End() calendar.Instant   { return s.end }

// Seconds returns the length of the span.
func (s Span) Seconds() int64 { return s.end.Sub(s.start) }

func (s Span) IsEmpty() bool { return s.start == s.end }

// Contains reports whether i lies in [Start, End).
func (s Span) Contains(i calendar.Instant) bool {
	return !i.Before(s.start) && i.Before(s.end)
}

// ContainsSpan reports whether o lies entirely within s.
func (s Span) ContainsSpan(o Span) bool {
	return !o.start.Before(s.start) && !o.end.After(s.end)
}

// Shift moves both ends of the span by n units of u.
func (s Span) Shift(seq calendar.Sequence, u Unit, n int) Span {
	start, end := Shift(s.start, seq, u, n), Shift(s.end, seq, u, n)
	if end.Before(start) {
		// month carries can reorder ends sitting on different days of the
		// month (Jan 31 and Feb 1 both land in early March)
		end = start
	}
	return Span{start: start, end: end}
}

func (s Span) String() string {
	return fmt.Sprintf("[%s, %s)", s.start, s.end)
}

// Shift adds n units of u to i. Carries always propagate to the next
// coarser unit and never clamp: Jan 31 + 1 MH is Mar 3 (Mar 2 in leap
// years). YR uses seq: a Gregorian year keeps month and day, an ISO year
// keeps week and weekday, so ISO week 53 + 1 YR carries into week 1 of the
// following year when that year is short.
func Shift(i calendar.Instant, seq calendar.Sequence, u Unit, n int) calendar.Instant {
	switch u {
	case Second:
		return i.Add(int64(n))
	case Minute:
		return i.Add(int64(n) * 60)
	case Hour:
		return i.Add(int64(n) * 3600)
	case Day, Weekday:
		return i.AddDays(int64(n))
	case Week:
		return i.AddDays(int64(n) * 7)
	case Month:
		y, m, d := i.Gregorian()
		total := y*12 + m - 1 + n
		nm := total % 12
		if nm < 0 {
			nm += 12
		}
		ny := (total - nm) / 12
		return calendar.Instant{Day: calendar.GregorianToDay(ny, nm+1, 1) + int64(d-1), Sec: i.Sec}
	case Year:
		if seq == calendar.ISO {
			y, w, wd := i.ISO()
			return calendar.Instant{Day: calendar.ISOToDay(y+n, w, wd), Sec: i.Sec}
		}
		y, m, d := i.Gregorian()
		return calendar.Instant{Day: calendar.GregorianToDay(y+n, m, 1) + int64(d-1), Sec: i.Sec}
	}
	return i
}
