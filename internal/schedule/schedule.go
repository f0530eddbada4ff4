// Package schedule drives jobs from the occurrences of a time point using
// robfig/cron.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	appLog "chronoseq/internal/log"
)

// horizonDays limits how far ahead Next searches. It exceeds one 400-year
// Gregorian cycle, after which every yearless pattern repeats.
const horizonDays = 146_100 + 366

// ErrNeverFires is returned by Watch for a point with no future occurrence.
var ErrNeverFires = errors.New("schedule: point has no future occurrence")

// Schedule fires at the start of each occurrence of a point. It implements
// cron.Schedule.
type Schedule struct {
	point chrono.TimePoint
}

var _ cron.Schedule = (*Schedule)(nil)

func New(tp chrono.TimePoint) *Schedule {
	return &Schedule{point: tp}
}

// Next returns the start of the first occurrence strictly after t, in t's
// location, or the zero time if there is none.
func (s *Schedule) Next(t time.Time) time.Time {
	sp, ok := s.Occurrence(t.Truncate(time.Second).Add(time.Second))
	if !ok {
		return time.Time{}
	}
	return sp.Start().Time().In(t.Location())
}

// Occurrence returns the first occurrence starting at or after at.
func (s *Schedule) Occurrence(at time.Time) (chrono.Span, bool) {
	from := calendar.FromTime(at)
	bound, err := chrono.NewSpan(from, from.AddDays(horizonDays))
	if err != nil {
		return chrono.Span{}, false
	}
	for sp := range chrono.OccurrencesWithin(s.point, bound) {
		return sp, true
	}
	return chrono.Span{}, false
}

// Watch calls fn with each occurrence of tp as it starts, until ctx is done.
func Watch(ctx context.Context, tp chrono.TimePoint, fn func(chrono.Span)) error {
	sched := New(tp)
	if sched.Next(time.Now()).IsZero() {
		return ErrNeverFires
	}

	c := cron.New(cron.WithLocation(time.UTC), cron.WithLogger(CronLogger{}))
	var id cron.EntryID
	id = c.Schedule(sched, cron.FuncJob(func() {
		at := c.Entry(id).Prev
		sp, ok := sched.Occurrence(at)
		if !ok {
			return
		}
		appLog.Debug("schedule fired", "start", sp.Start())
		fn(sp)
	}))

	c.Start()
	appLog.Info("schedule started", "next", c.Entry(id).Next.Format(time.RFC3339))

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("schedule stopped")
	return nil
}

// CronLogger routes cron's logging through the application logger. Cron's
// info messages are chatty and go to debug.
type CronLogger struct{}

var _ cron.Logger = CronLogger{}

func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
