package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "chronoseq/internal/log"
)

// Event is the normalized representation of a VEVENT read from an
// iCalendar payload. Recurrence expansion operates on this type.
type Event struct {
	// Origin names the file or URL the event was read from.
	Origin string

	UID     string
	Summary string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID, if present
	IsOverride bool       // true if this VEVENT overrides one recurring instance
}

// ParseEvents parses an iCalendar payload into events.
//
//   - Times come from the library's DTSTART/DTEND handling, TZID included.
//   - All-day events are detected from the DTSTART value format.
//   - RRULE/EXDATE/RECURRENCE-ID are recorded but not expanded;
//     see ExpandEvents.
//
// A VEVENT that cannot be read is logged and skipped.
func ParseEvents(origin string, body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "origin", redactURL(origin))
		return nil, err
	}

	events := make([]Event, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(origin, comp)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "origin", redactURL(origin))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "origin", redactURL(origin), "event_count", len(events))
	return events, nil
}

func parseVEvent(origin string, ve *ical.VEvent) (Event, error) {
	out := Event{Origin: origin}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start

	dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStartProp != nil {
		// VALUE=DATE or no 'T' in the value -> all-day
		if vs, ok := dtStartProp.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
		if !strings.Contains(dtStartProp.Value, "T") {
			out.AllDay = true
		}
	}

	// DTEND is optional; an all-day event without it lasts one day and a
	// timed one is instantaneous.
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	} else if out.AllDay {
		out.End = out.Start.AddDate(0, 0, 1)
	} else {
		out.End = out.Start
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	// EXDATE may repeat and hold comma-separated values.
	for _, p := range ve.Properties {
		if !strings.EqualFold(p.IANAToken, "EXDATE") {
			continue
		}
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if ridProp := ve.GetProperty(ical.ComponentPropertyRecurrenceId); ridProp != nil {
		if t, err := parseICSTime(ridProp.Value); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// parseICSTime parses the basic DATE, DATE-TIME and UTC forms used by
// EXDATE and RECURRENCE-ID. Floating times are taken as UTC.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse(icsUTCLayout, v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.UTC)
	}
	return time.ParseInLocation("20060102", v, time.UTC)
}
