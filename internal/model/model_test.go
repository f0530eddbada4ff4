package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
)

func TestParseElements(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"YR=2023,MH=8,DY=21", "YR=2023,MH=8,DY=21"},
		{"yr=2023, mh=Aug, dy=21", "YR=2023,MH=8,DY=21"},
		{"MH=december DY=31", "MH=12,DY=31"},
		{"WY=mo HR=9", "WY=MO,HR=9"},
		{"WY=5", "WY=FR"},
		{"YR=2020,WK=53", "YR=2020,WK=53"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			elems, err := ParseElements(chrono.DefaultRules, c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, FormatElements(elems))
		})
	}

	elems, err := ParseElements(chrono.DefaultRules, "  ")
	require.NoError(t, err)
	assert.Empty(t, elems)
}

func TestParseElements_Errors(t *testing.T) {
	for _, in := range []string{"YR", "YR=", "=5", "YR=2023,,MH=1", "YR=2023;MH=1"} {
		_, err := ParseElements(chrono.DefaultRules, in)
		assert.Error(t, err, in)
	}

	_, err := ParseElements(chrono.DefaultRules, "QQ=1")
	assert.ErrorContains(t, err, "unknown unit")

	_, err = ParseElements(chrono.DefaultRules, "MH=Smarch")
	assert.ErrorContains(t, err, "unknown month")

	_, err = ParseElements(chrono.DefaultRules, "HR=noon")
	assert.ErrorContains(t, err, "takes a number")

	_, err = ParseElements(chrono.DefaultRules, "MH=13")
	assert.True(t, errors.Is(err, chrono.ErrOutOfRange))

	_, err = ParseElements(chrono.DefaultRules, "WY=XX")
	assert.True(t, chrono.IsOutOfRange(err))
}

func TestParsePoint(t *testing.T) {
	tp, err := ParsePoint(chrono.DefaultRules, calendar.Gregorian, "YR=2023,WK=34,WY=MO")
	require.NoError(t, err)
	assert.Equal(t, "YR=2023,MH=8,DY=21", FormatElements(tp.Elements()))

	_, err = ParsePoint(chrono.DefaultRules, calendar.Gregorian, "YR=2023,MH=2,DY=30")
	assert.True(t, chrono.IsOutOfRange(err))

	_, err = ParsePoint(chrono.DefaultRules, calendar.Gregorian, "YR=2023,MH=8,HR=10")
	assert.True(t, chrono.IsHole(err))

	_, err = ParsePoint(chrono.DefaultRules, calendar.Gregorian, "")
	assert.True(t, chrono.IsHole(err))

	rules, err := chrono.NewRules(chrono.YearRange{Min: 1800, Max: 2199})
	require.NoError(t, err)
	_, err = ParsePoint(rules, calendar.ISO, "YR=2500")
	assert.True(t, chrono.IsOutOfRange(err))
}

func TestNewPoint(t *testing.T) {
	tp, err := ParsePoint(chrono.DefaultRules, calendar.Gregorian, "DY=21,HR=9")
	require.NoError(t, err)

	assert.Equal(t, Point{
		Sequence: "gregorian",
		Elements: "DY=21,HR=9",
		Scope:    "DY",
		Under:    "HR",
		Over:     []string{"YR", "MH"},
	}, NewPoint(tp))
}

func TestNewOccurrence(t *testing.T) {
	tp, err := ParsePoint(chrono.DefaultRules, calendar.Gregorian, "YR=2023,MH=8,DY=21,HR=9")
	require.NoError(t, err)
	s, err := tp.ToSpan()
	require.NoError(t, err)

	o := NewOccurrence(s)
	assert.Equal(t, time.Date(2023, 8, 21, 9, 0, 0, 0, time.UTC), o.Start)
	assert.Equal(t, time.Date(2023, 8, 21, 10, 0, 0, 0, time.UTC), o.End)
	assert.Equal(t, int64(3600), o.Seconds)
	assert.Equal(t, int64(19590), o.StartDay)
	assert.Equal(t, int32(9*3600), o.StartSec)
	assert.Equal(t, "2023-08-21", o.Date)
	assert.Equal(t, "2023-W34-MO", o.ISOWeek)

	assert.Len(t, Occurrences([]chrono.Span{s, s}), 2)
	assert.Empty(t, Occurrences(nil))
}

func TestNewComparison(t *testing.T) {
	span := func(s string) chrono.Span {
		tp, err := ParsePoint(chrono.DefaultRules, calendar.Gregorian, s)
		require.NoError(t, err)
		sp, err := tp.ToSpan()
		require.NoError(t, err)
		return sp
	}

	c := NewComparison(span("YR=2023,MH=8,DY=21"), span("YR=2023,MH=8"))
	assert.Equal(t, 1, c.Order)
	assert.True(t, c.Overlaps)
	assert.Equal(t, "inside", c.Relation)
	require.NotNil(t, c.Intersection)
	assert.Equal(t, "2023-08-21", c.Intersection.Date)

	c = NewComparison(span("YR=2023,MH=7"), span("YR=2023,MH=8"))
	assert.Equal(t, -1, c.Order)
	assert.False(t, c.Overlaps)
	assert.Equal(t, "before", c.Relation)
	assert.Nil(t, c.Intersection)
}

func TestParseBound(t *testing.T) {
	b, err := ParseBound(chrono.DefaultRules, calendar.Gregorian, "YR=2023", "")
	require.NoError(t, err)
	assert.Equal(t, calendar.DateTime(2023, 1, 1, 0, 0, 0), b.Start())
	assert.Equal(t, calendar.DateTime(2024, 1, 1, 0, 0, 0), b.End())

	b, err = ParseBound(chrono.DefaultRules, calendar.ISO, "YR=2023,WK=34", "YR=2023,WK=36")
	require.NoError(t, err)
	assert.Equal(t, calendar.DateTime(2023, 8, 21, 0, 0, 0), b.Start())
	assert.Equal(t, int64(14*calendar.SecondsPerDay), b.Seconds())

	_, err = ParseBound(chrono.DefaultRules, calendar.Gregorian, "", "YR=2024")
	assert.Error(t, err)
	_, err = ParseBound(chrono.DefaultRules, calendar.Gregorian, "MH=8", "")
	assert.True(t, errors.Is(err, chrono.ErrUnanchored))
	_, err = ParseBound(chrono.DefaultRules, calendar.Gregorian, "YR=2024", "YR=2023")
	assert.True(t, errors.Is(err, chrono.ErrInvertedRange))
}

func TestListOccurrences(t *testing.T) {
	tp, err := ParsePoint(chrono.DefaultRules, calendar.Gregorian, "MH=8,DY=21")
	require.NoError(t, err)
	bound, err := ParseBound(chrono.DefaultRules, calendar.Gregorian, "YR=2023", "YR=2026")
	require.NoError(t, err)

	list := ListOccurrences(tp, bound, 0)
	assert.False(t, list.Truncated)
	require.Len(t, list.Occurrences, 3)
	assert.Equal(t, "2025-08-21", list.Occurrences[2].Date)
	assert.Equal(t, "MH=8,DY=21", list.Point.Elements)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), list.BoundEnd)

	list = ListOccurrences(tp, bound, 2)
	assert.True(t, list.Truncated)
	assert.Len(t, list.Occurrences, 2)
}

func TestNewPoint_ZeroValue(t *testing.T) {
	p := NewPoint(chrono.TimePoint{})
	assert.Empty(t, p.Scope)
	assert.Empty(t, p.Under)
	assert.Empty(t, p.Over)
	assert.False(t, p.Anchored)
}
