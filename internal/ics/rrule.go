package ics

import (
	"fmt"

	"github.com/teambition/rrule-go"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	appLog "chronoseq/internal/log"
)

var rruleWeekdays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// RRuleFor maps a point to the RFC 5545 rule whose instances are the starts
// of the point's occurrences:
//
//	MH=8 DY=21       FREQ=YEARLY;BYMONTH=8;BYMONTHDAY=21
//	DY=31 HR=12      FREQ=MONTHLY;BYMONTHDAY=31;BYHOUR=12
//	WK=34 WY=MO      FREQ=YEARLY;BYWEEKNO=34;BYDAY=MO
//	WY=FR HR=17      FREQ=WEEKLY;BYDAY=FR;BYHOUR=17
//
// Units finer than the point take their minimum, as in ToSpan. The rule of
// a yearless point has no DTSTART; set one before expanding it. An anchored
// point maps to a single instance (COUNT=1) at the start of its span.
func RRuleFor(tp chrono.TimePoint) (rrule.ROption, error) {
	opt := rrule.ROption{Wkst: rrule.MO}
	if tp.IsAnchored() {
		s, err := tp.ToSpan()
		if err != nil {
			return rrule.ROption{}, err
		}
		opt.Freq = rrule.YEARLY
		opt.Count = 1
		opt.Dtstart = s.Start().Time()
		return opt, nil
	}

	val := func(u chrono.Unit, def int) int {
		if v, ok := tp.Value(u); ok {
			return v
		}
		return def
	}

	switch tp.Scope() {
	case chrono.Month:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{val(chrono.Month, 1)}
		opt.Bymonthday = []int{val(chrono.Day, 1)}
	case chrono.Day:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{val(chrono.Day, 1)}
	case chrono.Week:
		opt.Freq = rrule.YEARLY
		opt.Byweekno = []int{val(chrono.Week, 1)}
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[val(chrono.Weekday, 1)-1]}
	case chrono.Weekday:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[val(chrono.Weekday, 1)-1]}
	default:
		return rrule.ROption{}, fmt.Errorf("ics: no recurrence rule for points starting at %s", tp.Scope())
	}

	opt.Byhour = []int{val(chrono.Hour, 0)}
	opt.Byminute = []int{val(chrono.Minute, 0)}
	opt.Bysecond = []int{val(chrono.Second, 0)}
	return opt, nil
}

// ExpandRRule expands tp's rule with rrule-go and returns the spans lying
// within bound, each lasting one unit of tp.Under(). rrule-go numbers weeks
// by calendar year, so BYWEEKNO=53 also fires in the first days of January
// after a short ISO year; instances that do not lie on tp are dropped.
// The result matches chrono.OccurrencesWithin and serves as an
// independent check of the engine. max <= 0 means no cap; the second
// result reports truncation.
func ExpandRRule(tp chrono.TimePoint, bound chrono.Span, max int) ([]chrono.Span, bool, error) {
	opt, err := RRuleFor(tp)
	if err != nil {
		return nil, false, err
	}
	if !tp.IsAnchored() {
		opt.Dtstart = bound.Start().Time()
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, false, fmt.Errorf("ics: rule %s: %w", opt.RRuleString(), err)
	}

	var out []chrono.Span
	for _, t := range r.Between(bound.Start().Time(), bound.End().Time(), true) {
		start := calendar.FromTime(t)
		if !tp.Matches(start) {
			appLog.Debug("ics: rrule instance off the point", "rule", opt.RRuleString(), "at", t)
			continue
		}
		s, err := chrono.NewSpan(start, chrono.Shift(start, tp.Sequence(), tp.Under(), 1))
		if err != nil || !bound.ContainsSpan(s) {
			continue
		}
		if max > 0 && len(out) == max {
			appLog.Debug("ics: rrule expansion truncated", "rule", opt.RRuleString(), "cap", max)
			return out, true, nil
		}
		out = append(out, s)
	}
	return out, false, nil
}
