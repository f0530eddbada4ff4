package chrono

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoseq/internal/calendar"
)

func years(t *testing.T, from, to int) Span {
	t.Helper()
	s, err := SpanBetween(gre(t, el(Year, from)), gre(t, el(Year, to)))
	require.NoError(t, err)
	return s
}

func starts(spans []Span) []calendar.Instant {
	out := make([]calendar.Instant, len(spans))
	for i, s := range spans {
		out[i] = s.Start()
	}
	return out
}

func TestOccurrencesWithin_YearlyDate(t *testing.T) {
	bound := years(t, 2023, 2026)
	got := collect(t, gre(t, el(Month, 8), el(Day, 21)), bound)

	require.Len(t, got, 3)
	assert.Equal(t, []calendar.Instant{day(2023, 8, 21), day(2024, 8, 21), day(2025, 8, 21)}, starts(got))
	for _, s := range got {
		assert.True(t, bound.ContainsSpan(s))
		assert.Equal(t, int64(calendar.SecondsPerDay), s.Seconds())
	}
	for i := 1; i < len(got); i++ {
		assert.Equal(t, -1, Compare(got[i-1], got[i]))
	}
}

func TestOccurrencesWithin_SkipsMissingDates(t *testing.T) {
	leapDays := collect(t, gre(t, el(Month, 2), el(Day, 29)), years(t, 2020, 2030))
	assert.Equal(t, []calendar.Instant{day(2020, 2, 29), day(2024, 2, 29), day(2028, 2, 29)}, starts(leapDays))

	thirtyFirsts := collect(t, gre(t, el(Day, 31)), years(t, 2023, 2024))
	assert.Equal(t, []calendar.Instant{
		day(2023, 1, 31), day(2023, 3, 31), day(2023, 5, 31), day(2023, 7, 31),
		day(2023, 8, 31), day(2023, 10, 31), day(2023, 12, 31),
	}, starts(thirtyFirsts))

	bound := span(t, day(2015, 1, 1), day(2027, 2, 1))
	longWeeks := collect(t, iso(t, el(Week, 53)), bound)
	assert.Equal(t, []calendar.Instant{day(2015, 12, 28), day(2020, 12, 28), day(2026, 12, 28)}, starts(longWeeks))
}

func TestOccurrencesWithin_WeeklyHour(t *testing.T) {
	bound := span(t, day(2023, 8, 1), day(2023, 9, 1))
	got := collect(t, iso(t, wy("MO"), el(Hour, 9)), bound)

	require.Len(t, got, 4)
	for i, d := range []int{7, 14, 21, 28} {
		assert.Equal(t, calendar.DateTime(2023, 8, d, 9, 0, 0), got[i].Start())
		assert.Equal(t, calendar.DateTime(2023, 8, d, 10, 0, 0), got[i].End())
	}
}

func TestOccurrencesWithin_OnlyContainedSpans(t *testing.T) {
	spec := gre(t, el(Month, 8), el(Day, 21))

	bound := span(t, calendar.DateTime(2023, 8, 21, 12, 0, 0), day(2024, 8, 21))
	assert.Empty(t, collect(t, spec, bound))

	bound = span(t, calendar.DateTime(2023, 8, 21, 12, 0, 0), day(2024, 8, 22))
	assert.Equal(t, []calendar.Instant{day(2024, 8, 21)}, starts(collect(t, spec, bound)))

	empty := span(t, day(2023, 8, 21), day(2023, 8, 21))
	assert.Empty(t, collect(t, spec, empty))
}

func TestOccurrencesWithin_AnchoredSpec(t *testing.T) {
	spec := gre(t, el(Year, 2024), el(Month, 8), el(Day, 21))

	got := collect(t, spec, years(t, 2023, 2026))
	require.Len(t, got, 1)
	assert.Equal(t, day(2024, 8, 21), got[0].Start())

	assert.Empty(t, collect(t, spec, years(t, 2025, 2026)))
}

func TestOccurrencesWithin_RestartableAndStoppable(t *testing.T) {
	seq := OccurrencesWithin(gre(t, el(Day, 1)), years(t, 2023, 2025))

	first, truncated := Take(seq, 0)
	require.False(t, truncated)
	second, _ := Take(seq, 0)
	assert.Equal(t, first, second)
	assert.Len(t, first, 24)

	capped, truncated := Take(seq, 5)
	assert.True(t, truncated)
	assert.Equal(t, first[:5], capped)

	exact, truncated := Take(seq, 24)
	assert.False(t, truncated)
	assert.Len(t, exact, 24)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestOccurrencesWithin_ConcurrentUse(t *testing.T) {
	spec := gre(t, el(Month, 8), el(Day, 21))
	bound := years(t, 1900, 2100)
	want, _ := Take(OccurrencesWithin(spec, bound), 0)
	require.Len(t, want, 200)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := Take(OccurrencesWithin(spec, bound), 0)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestRecurrence_WrapsYear(t *testing.T) {
	r, err := NewRecurrence(
		gre(t, el(Month, 12), el(Day, 20)),
		gre(t, el(Month, 1), el(Day, 5)),
	)
	require.NoError(t, err)

	got, _ := Take(r.Within(years(t, 2023, 2026)), 0)
	require.Len(t, got, 2)
	assert.Equal(t, span(t, day(2023, 12, 20), day(2024, 1, 6)), got[0])
	assert.Equal(t, span(t, day(2024, 12, 20), day(2025, 1, 6)), got[1])
}

func TestRecurrence_SameYear(t *testing.T) {
	r, err := NewRecurrence(
		gre(t, el(Month, 6), el(Day, 1)),
		gre(t, el(Month, 8), el(Day, 31)),
	)
	require.NoError(t, err)

	got, _ := Take(r.Within(years(t, 2023, 2025)), 0)
	require.Len(t, got, 2)
	assert.Equal(t, span(t, day(2023, 6, 1), day(2023, 9, 1)), got[0])
	assert.Equal(t, span(t, day(2024, 6, 1), day(2024, 9, 1)), got[1])
}

func TestNewRecurrence_Errors(t *testing.T) {
	_, err := NewRecurrence(gre(t, el(Month, 6)), iso(t, el(Week, 30)))
	assert.True(t, IsInconsistent(err))

	_, err = NewRecurrence(gre(t, el(Month, 6)), gre(t, el(Day, 3)))
	assert.True(t, IsInconsistent(err))

	_, err = NewRecurrence(
		gre(t, el(Year, 2024), el(Month, 6)),
		gre(t, el(Year, 2023), el(Month, 6)),
	)
	assert.True(t, IsInvertedRange(err))

	r, err := NewRecurrence(
		gre(t, el(Year, 2023), el(Month, 6)),
		gre(t, el(Year, 2023), el(Month, 8)),
	)
	require.NoError(t, err)
	assert.Equal(t, Year, r.From().Scope())
	got, _ := Take(r.Within(years(t, 2020, 2030)), 0)
	require.Len(t, got, 1)
	assert.Equal(t, span(t, day(2023, 6, 1), day(2023, 9, 1)), got[0])
}
