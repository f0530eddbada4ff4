package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
)

func icsBody(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

var standup = icsBody(
	"BEGIN:VEVENT",
	"UID:standup@test",
	"SUMMARY:Standup",
	"DTSTART:20230801T090000Z",
	"DTEND:20230801T100000Z",
	"RRULE:FREQ=WEEKLY;COUNT=5",
	"EXDATE:20230815T090000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup@test",
	"SUMMARY:Standup (moved)",
	"RECURRENCE-ID:20230822T090000Z",
	"DTSTART:20230822T110000Z",
	"DTEND:20230822T120000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:offsite@test",
	"SUMMARY:Offsite",
	"DTSTART;VALUE=DATE:20230810",
	"DTEND;VALUE=DATE:20230812",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"SUMMARY:No UID",
	"DTSTART:20230803T090000Z",
	"END:VEVENT",
)

func august(t *testing.T) chrono.Span {
	t.Helper()
	s, err := chrono.NewSpan(calendar.DateTime(2023, 8, 1, 0, 0, 0), calendar.DateTime(2023, 9, 1, 0, 0, 0))
	require.NoError(t, err)
	return s
}

func TestParseEvents(t *testing.T) {
	events, err := ParseEvents("inline", standup)
	require.NoError(t, err)
	require.Len(t, events, 3, "event without UID is skipped")

	base := events[0]
	assert.Equal(t, "standup@test", base.UID)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=5", base.RawRRule)
	require.Len(t, base.ExDates, 1)
	assert.True(t, base.ExDates[0].Equal(time.Date(2023, 8, 15, 9, 0, 0, 0, time.UTC)))
	assert.False(t, base.IsOverride)

	override := events[1]
	assert.True(t, override.IsOverride)
	require.NotNil(t, override.Recurrence)
	assert.True(t, override.Recurrence.Equal(time.Date(2023, 8, 22, 9, 0, 0, 0, time.UTC)))

	allDay := events[2]
	assert.True(t, allDay.AllDay)
	assert.Equal(t, "Offsite", allDay.Summary)
}

func TestParseEvents_Errors(t *testing.T) {
	_, err := ParseEvents("empty", nil)
	assert.Error(t, err)
}

func TestExpandEvents(t *testing.T) {
	events, err := ParseEvents("inline", standup)
	require.NoError(t, err)

	res, err := ExpandEvents(events, ExpandConfig{Bound: august(t)})
	require.NoError(t, err)
	assert.Empty(t, res.TruncatedEvents)

	type row struct{ date, summary string }
	var got []row
	for _, o := range res.Occurrences {
		got = append(got, row{o.Start.Format(time.RFC3339), o.Summary})
	}
	assert.Equal(t, []row{
		{"2023-08-01T09:00:00Z", "Standup"},
		{"2023-08-08T09:00:00Z", "Standup"},
		{"2023-08-10T00:00:00Z", "Offsite"},
		{"2023-08-22T11:00:00Z", "Standup (moved)"},
		{"2023-08-29T09:00:00Z", "Standup"},
	}, got)

	offsite := res.Occurrences[2]
	assert.Equal(t, int64(2*calendar.SecondsPerDay), offsite.Seconds)
	assert.Equal(t, "2023-W32-TH", offsite.ISOWeek)
}

func TestExpandEvents_KeepsOverlapping(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:night@test",
		"DTSTART:20230731T220000Z",
		"DTEND:20230801T020000Z",
		"END:VEVENT",
	)
	events, err := ParseEvents("inline", body)
	require.NoError(t, err)

	res, err := ExpandEvents(events, ExpandConfig{Bound: august(t)})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, "2023-07-31", res.Occurrences[0].Date)
}

func TestExpandEvents_Cap(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:daily@test",
		"DTSTART:20230801T080000Z",
		"DTEND:20230801T083000Z",
		"RRULE:FREQ=DAILY",
		"END:VEVENT",
	)
	events, err := ParseEvents("inline", body)
	require.NoError(t, err)

	res, err := ExpandEvents(events, ExpandConfig{Bound: august(t), MaxOccurrencesPerEvent: 10})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 10)
	assert.Equal(t, []string{"daily@test"}, res.TruncatedEvents)
}

func TestExpandEvents_EmptyBound(t *testing.T) {
	_, err := ExpandEvents(nil, ExpandConfig{})
	assert.Error(t, err)
}
