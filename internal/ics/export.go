package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	appLog "chronoseq/internal/log"
	"chronoseq/internal/model"
)

// ErrNoOccurrence is returned by ExportRecurring when the bound holds no
// occurrence to anchor the master event.
var ErrNoOccurrence = errors.New("ics: no occurrence within bound")

// ExportOptions controls calendar metadata.
type ExportOptions struct {
	// Name is used as the calendar name and as the SUMMARY of each event.
	// If empty, the point's element list is used.
	Name string

	// Stamp is written as DTSTAMP. If zero, time.Now() is used.
	Stamp time.Time
}

func (o ExportOptions) summary(tp chrono.TimePoint) string {
	if o.Name != "" {
		return o.Name
	}
	return model.FormatElements(tp.Elements())
}

func (o ExportOptions) stamp() time.Time {
	if o.Stamp.IsZero() {
		return time.Now().UTC()
	}
	return o.Stamp
}

func newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendarFor("chronoseq")
	cal.SetMethod(ical.MethodPublish)
	cal.SetName(name)
	cal.SetXWRCalName(name)
	return cal
}

// eventUID derives a stable UID from the point and the start of its first
// exported instance, so re-exports update rather than duplicate events.
func eventUID(tp chrono.TimePoint, s chrono.Span) string {
	key := fmt.Sprintf("%s|%s|%d|%d", tp.Sequence(), model.FormatElements(tp.Elements()), s.Start().Day, s.Start().Sec)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String() + "@chronoseq"
}

func addEvent(cal *ical.Calendar, tp chrono.TimePoint, s chrono.Span, summary string, stamp time.Time) *ical.VEvent {
	ev := cal.AddEvent(eventUID(tp, s))
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(s.Start().Time())
	ev.SetEndAt(s.End().Time())
	ev.SetSummary(summary)
	return ev
}

// ExportOccurrences renders one VEVENT per span.
func ExportOccurrences(tp chrono.TimePoint, spans []chrono.Span, opts ExportOptions) string {
	summary := opts.summary(tp)
	cal := newCalendar(summary)
	stamp := opts.stamp()
	for _, s := range spans {
		addEvent(cal, tp, s, summary, stamp)
	}
	return cal.Serialize()
}

// ExportRecurring renders a single master VEVENT: DTSTART/DTEND are the
// first occurrence within bound and an RRULE produces the rest, ending
// with UNTIL at the last occurrence within bound. Rule instances that are
// not occurrences, such as BYWEEKNO=53 landing in a short ISO year, get an
// EXDATE.
//
// A single VEVENT has one length. When the occurrences differ in length
// (MH=2 across a leap year) or the rule misses one of them, the result is
// one VEVENT per occurrence, as ExportOccurrences renders it.
func ExportRecurring(tp chrono.TimePoint, bound chrono.Span, opts ExportOptions) (string, error) {
	spans, _ := chrono.Take(chrono.OccurrencesWithin(tp, bound), 0)
	if len(spans) == 0 {
		return "", fmt.Errorf("%w %s", ErrNoOccurrence, bound)
	}
	first, last := spans[0], spans[len(spans)-1]

	opt, err := RRuleFor(tp)
	if err != nil {
		return "", err
	}

	var exdates []time.Time
	if !tp.IsAnchored() {
		if !sameLength(spans) {
			appLog.Debug("ics: occurrence lengths differ, exporting one event each",
				"point", model.FormatElements(tp.Elements()), "count", len(spans))
			return ExportOccurrences(tp, spans, opts), nil
		}
		opt.Dtstart = first.Start().Time()
		opt.Until = last.Start().Time()

		var complete bool
		exdates, complete, err = ruleExceptions(opt, spans)
		if err != nil {
			return "", err
		}
		if !complete {
			appLog.Debug("ics: rule misses occurrences, exporting one event each",
				"rule", opt.RRuleString(), "count", len(spans))
			return ExportOccurrences(tp, spans, opts), nil
		}
	}

	summary := opts.summary(tp)
	cal := newCalendar(summary)
	ev := addEvent(cal, tp, first, summary, opts.stamp())
	ev.AddRrule(opt.RRuleString())
	for _, t := range exdates {
		ev.AddExdate(t.UTC().Format(icsUTCLayout))
	}
	return cal.Serialize(), nil
}

const icsUTCLayout = "20060102T150405Z"

func sameLength(spans []chrono.Span) bool {
	for _, s := range spans[1:] {
		if s.Seconds() != spans[0].Seconds() {
			return false
		}
	}
	return true
}

// ruleExceptions expands opt and returns the instances that start no span.
// complete is false when some span has no instance.
func ruleExceptions(opt rrule.ROption, spans []chrono.Span) (exdates []time.Time, complete bool, err error) {
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, false, fmt.Errorf("ics: rule %s: %w", opt.RRuleString(), err)
	}

	starts := make(map[calendar.Instant]bool, len(spans))
	for _, s := range spans {
		starts[s.Start()] = true
	}
	matched := 0
	for _, t := range r.All() {
		if starts[calendar.FromTime(t)] {
			matched++
			continue
		}
		exdates = append(exdates, t)
	}
	return exdates, matched == len(spans), nil
}
