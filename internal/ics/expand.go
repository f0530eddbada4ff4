package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	appLog "chronoseq/internal/log"
	"chronoseq/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// Bound is the window of interest. Occurrences overlapping it are kept.
	Bound chrono.Span

	// MaxOccurrencesPerEvent is a safety cap to avoid infinite or extremely
	// large expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the list of expanded occurrences and optionally
// information about truncation.
type ExpandResult struct {
	Occurrences []model.Occurrence
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// ExpandEvents expands events into concrete occurrences overlapping
// cfg.Bound, sorted by start. It handles:
//
//   - Single non-recurring events
//   - RRULE-based recurrence
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides
//   - All-day events, which cover whole days of the ordinal coordinate
func ExpandEvents(events []Event, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.Bound.IsEmpty() {
		return result, errors.New("expand: bound is empty")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]Event)
	overridesByUID := make(map[string][]Event)
	var uids []string
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	out := make([]model.Occurrence, 0)
	for _, uid := range uids {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			out = append(out, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	result.Occurrences = out
	return result, nil
}

func expandEvent(ev Event, overrides []Event, cfg ExpandConfig) ([]model.Occurrence, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev Event, overrides []Event, cfg ExpandConfig) []model.Occurrence {
	if o, ok := findOverrideForStart(overrides, ev.Start); ok {
		ev = o
	}
	if occ, ok := makeOccurrence(ev, ev.Start, ev.End, cfg.Bound); ok {
		return []model.Occurrence{occ}
	}
	return nil
}

func expandRecurringEvent(ev Event, overrides []Event, cfg ExpandConfig) ([]model.Occurrence, bool) {
	out := make([]model.Occurrence, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower edge by the event length so instances that started
	// before the bound but still overlap it are found.
	dur := ev.End.Sub(ev.Start)
	from := cfg.Bound.Start().Time().Add(-dur)
	to := cfg.Bound.End().Time()

	hitCap := false
	for _, occStart := range set.Between(from, to, true) {
		if len(out) == cfg.MaxOccurrencesPerEvent {
			hitCap = true
			break
		}

		base := ev
		start, end := occStart, occStart.Add(dur)
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			base, start, end = o, o.Start, o.End
		}
		if occ, ok := makeOccurrence(base, start, end, cfg.Bound); ok {
			out = append(out, occ)
		}
	}
	return out, hitCap
}

// findOverrideForStart finds an override whose RECURRENCE-ID equals start.
func findOverrideForStart(overrides []Event, start time.Time) (Event, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return Event{}, false
}

// makeOccurrence maps [start, end) onto the ordinal coordinate and keeps it
// when it overlaps bound. All-day instances snap to whole days.
func makeOccurrence(ev Event, start, end time.Time, bound chrono.Span) (model.Occurrence, bool) {
	a, b := calendar.FromTime(start), calendar.FromTime(end)
	if ev.AllDay {
		a = calendar.DateTime(start.Year(), int(start.Month()), start.Day(), 0, 0, 0)
		days := int64(end.Sub(start).Hours()+12) / 24
		if days < 1 {
			days = 1
		}
		b = a.AddDays(days)
	}

	s, err := chrono.NewSpan(a, b)
	if err != nil {
		appLog.Error("expand: skipping inverted instance", err, "uid", ev.UID)
		return model.Occurrence{}, false
	}
	if !chrono.Overlaps(s, bound) && !(s.IsEmpty() && bound.Contains(a)) {
		return model.Occurrence{}, false
	}

	occ := model.NewOccurrence(s)
	occ.UID = ev.UID
	occ.Summary = ev.Summary
	return occ, true
}
