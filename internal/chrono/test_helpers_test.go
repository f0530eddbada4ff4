package chrono

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chronoseq/internal/calendar"
)

func el(u Unit, v int) Element { return MustElement(u, v) }

func wy(token string) Element {
	e, err := WeekdayElement(token)
	if err != nil {
		panic(err)
	}
	return e
}

func gre(t *testing.T, elems ...Element) TimePoint {
	t.Helper()
	tp, err := Build(calendar.Gregorian, elems...)
	require.NoError(t, err)
	return tp
}

func iso(t *testing.T, elems ...Element) TimePoint {
	t.Helper()
	tp, err := Build(calendar.ISO, elems...)
	require.NoError(t, err)
	return tp
}

func day(y, m, d int) calendar.Instant { return calendar.DateTime(y, m, d, 0, 0, 0) }

func span(t *testing.T, start, end calendar.Instant) Span {
	t.Helper()
	s, err := NewSpan(start, end)
	require.NoError(t, err)
	return s
}

func collect(t *testing.T, spec TimePoint, bound Span) []Span {
	t.Helper()
	out, truncated := Take(OccurrencesWithin(spec, bound), 0)
	require.False(t, truncated)
	return out
}
