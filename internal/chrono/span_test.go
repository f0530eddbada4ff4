package chrono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoseq/internal/calendar"
)

func TestToSpan(t *testing.T) {
	cases := []struct {
		name  string
		point TimePoint
		start calendar.Instant
		end   calendar.Instant
	}{
		{
			name:  "gregorian day",
			point: gre(t, el(Year, 2023), el(Month, 8), el(Day, 21)),
			start: day(2023, 8, 21),
			end:   day(2023, 8, 22),
		},
		{
			name:  "december carries into next year",
			point: gre(t, el(Year, 2023), el(Month, 12)),
			start: day(2023, 12, 1),
			end:   day(2024, 1, 1),
		},
		{
			name:  "leap february",
			point: gre(t, el(Year, 2024), el(Month, 2)),
			start: day(2024, 2, 1),
			end:   day(2024, 3, 1),
		},
		{
			name:  "gregorian year",
			point: gre(t, el(Year, 2023)),
			start: day(2023, 1, 1),
			end:   day(2024, 1, 1),
		},
		{
			name:  "iso year",
			point: iso(t, el(Year, 2021)),
			start: day(2021, 1, 4),
			end:   day(2022, 1, 3),
		},
		{
			name:  "iso week 53",
			point: iso(t, el(Year, 2020), el(Week, 53)),
			start: day(2020, 12, 28),
			end:   day(2021, 1, 4),
		},
		{
			name:  "iso weekday",
			point: iso(t, el(Year, 2023), el(Week, 34), wy("MO")),
			start: day(2023, 8, 21),
			end:   day(2023, 8, 22),
		},
		{
			name:  "hour",
			point: gre(t, el(Year, 2023), el(Month, 8), el(Day, 21), el(Hour, 9)),
			start: calendar.DateTime(2023, 8, 21, 9, 0, 0),
			end:   calendar.DateTime(2023, 8, 21, 10, 0, 0),
		},
		{
			name: "last second of the year",
			point: gre(t, el(Year, 2023), el(Month, 12), el(Day, 31),
				el(Hour, 23), el(Minute, 59), el(Second, 59)),
			start: calendar.DateTime(2023, 12, 31, 23, 59, 59),
			end:   day(2024, 1, 1),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := c.point.ToSpan()
			require.NoError(t, err)
			assert.Equal(t, c.start, s.Start(), "start")
			assert.Equal(t, c.end, s.End(), "end")
		})
	}
}

func TestToSpan_NeverEmpty(t *testing.T) {
	for m := 1; m <= 12; m++ {
		for _, d := range []int{1, 28} {
			for h := 0; h < 24; h += 7 {
				tp := gre(t, el(Year, 2024), el(Month, m), el(Day, d), el(Hour, h))
				s, err := tp.ToSpan()
				require.NoError(t, err)
				assert.True(t, s.Start().Before(s.End()), "%v", tp.Elements())
				assert.Equal(t, int64(3600), s.Seconds())
			}
		}
	}
	s, err := gre(t, el(Year, 2024), el(Month, 2)).ToSpan()
	require.NoError(t, err)
	assert.Equal(t, int64(29*calendar.SecondsPerDay), s.Seconds())
}

func TestNewSpan(t *testing.T) {
	_, err := NewSpan(day(2023, 8, 22), day(2023, 8, 21))
	assert.True(t, IsInvertedRange(err))

	s, err := NewSpan(day(2023, 8, 21), day(2023, 8, 21))
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Contains(day(2023, 8, 21)))

	s = span(t, day(2023, 8, 21), day(2023, 8, 22))
	assert.True(t, s.Contains(day(2023, 8, 21)))
	assert.True(t, s.Contains(calendar.DateTime(2023, 8, 21, 23, 59, 59)))
	assert.False(t, s.Contains(day(2023, 8, 22)))
	assert.Equal(t, "[2023-08-21T00:00:00, 2023-08-22T00:00:00)", s.String())
}

func TestSpanBetween(t *testing.T) {
	s, err := SpanBetween(gre(t, el(Year, 2023)), gre(t, el(Year, 2026)))
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 1), s.Start())
	assert.Equal(t, day(2026, 1, 1), s.End())

	_, err = SpanBetween(gre(t, el(Year, 2026)), gre(t, el(Year, 2023)))
	assert.True(t, IsInvertedRange(err))

	_, err = SpanBetween(gre(t, el(Month, 1)), gre(t, el(Year, 2023)))
	assert.True(t, IsUnanchored(err))
}

func TestShift(t *testing.T) {
	cases := []struct {
		name string
		from calendar.Instant
		seq  calendar.Sequence
		unit Unit
		n    int
		want calendar.Instant
	}{
		{"month carries past short february", day(2023, 1, 31), calendar.Gregorian, Month, 1, day(2023, 3, 3)},
		{"month carries in leap year", day(2024, 1, 31), calendar.Gregorian, Month, 1, day(2024, 3, 2)},
		{"month backwards over year", day(2024, 1, 15), calendar.Gregorian, Month, -1, day(2023, 12, 15)},
		{"month forwards over year", day(2023, 11, 30), calendar.Gregorian, Month, 3, day(2024, 3, 1)},
		{"leap day plus a year", day(2024, 2, 29), calendar.Gregorian, Year, 1, day(2025, 3, 1)},
		{"iso year keeps week", day(2023, 8, 21), calendar.ISO, Year, 1, day(2024, 8, 19)},
		{"iso week 53 into short year", day(2020, 12, 28), calendar.ISO, Year, 1, day(2022, 1, 3)},
		{"week", day(2023, 12, 28), calendar.ISO, Week, 1, day(2024, 1, 4)},
		{"weekday", day(2023, 8, 21), calendar.ISO, Weekday, -1, day(2023, 8, 20)},
		{"second over midnight", calendar.DateTime(2023, 12, 31, 23, 59, 59), calendar.Gregorian, Second, 1, day(2024, 1, 1)},
		{"hours back", day(2023, 1, 1), calendar.Gregorian, Hour, -2, calendar.DateTime(2022, 12, 31, 22, 0, 0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Shift(c.from, c.seq, c.unit, c.n))
		})
	}
}

func TestSpan_Shift(t *testing.T) {
	s := span(t, day(2023, 8, 21), day(2023, 8, 22)).Shift(calendar.Gregorian, Month, 1)
	assert.Equal(t, day(2023, 9, 21), s.Start())
	assert.Equal(t, day(2023, 9, 22), s.End())

	// Jan 31 and Feb 1 both move into early March.
	s = span(t, day(2023, 1, 31), day(2023, 2, 1)).Shift(calendar.Gregorian, Month, 1)
	assert.Equal(t, day(2023, 3, 3), s.Start())
	assert.Equal(t, day(2023, 3, 3), s.End())
	assert.True(t, s.IsEmpty())
}
