package calendar

import (
	"fmt"
	"time"
)

const SecondsPerDay = 86400

// Instant is the ordinal coordinate: a day number plus seconds into that
// day. Every point and span of either sequence resolves to it before being
// compared. Sec is always in [0, SecondsPerDay).
type Instant struct {
	Day int64
	Sec int32
}

// NewInstant normalizes sec into the day, so NewInstant(0, -1) is the last
// second of day -1.
func NewInstant(day, sec int64) Instant {
	day += floorDiv(sec, SecondsPerDay)
	return Instant{Day: day, Sec: int32(floorMod(sec, SecondsPerDay))}
}

// DateTime builds an Instant from a Gregorian date and a clock time.
func DateTime(year, month, day, hour, min, sec int) Instant {
	return NewInstant(GregorianToDay(year, month, day), int64(hour*3600+min*60+sec))
}

// FromTime converts t (taken in UTC) to an Instant.
func FromTime(t time.Time) Instant {
	return NewInstant(0, t.Unix())
}

// Time returns the UTC time.Time of the instant.
func (i Instant) Time() time.Time {
	return time.Unix(i.Day*SecondsPerDay+int64(i.Sec), 0).UTC()
}

// Add moves the instant by n seconds.
func (i Instant) Add(n int64) Instant {
	return NewInstant(i.Day, int64(i.Sec)+n)
}

// AddDays moves the instant by n days, keeping the time of day.
func (i Instant) AddDays(n int64) Instant {
	return Instant{Day: i.Day + n, Sec: i.Sec}
}

// Sub returns i-j in seconds.
func (i Instant) Sub(j Instant) int64 {
	return (i.Day-j.Day)*SecondsPerDay + int64(i.Sec-j.Sec)
}

// Compare returns -1, 0 or +1.
func (i Instant) Compare(j Instant) int {
	switch {
	case i.Day < j.Day:
		return -1
	case i.Day > j.Day:
		return 1
	case i.Sec < j.Sec:
		return -1
	case i.Sec > j.Sec:
		return 1
	}
	return 0
}

func (i Instant) Before(j Instant) bool { return i.Compare(j) < 0 }
func (i Instant) After(j Instant) bool  { return i.Compare(j) > 0 }

// Gregorian returns the date of the instant.
func (i Instant) Gregorian() (year, month, day int) {
	return DayToGregorian(i.Day)
}

// ISO returns the ISO week date of the instant.
func (i Instant) ISO() (year, week int, wd Weekday) {
	return DayToISO(i.Day)
}

// Clock returns the time of day.
func (i Instant) Clock() (hour, min, sec int) {
	s := int(i.Sec)
	return s / 3600, s % 3600 / 60, s % 60
}

// String renders the instant as an ISO 8601 date-time without offset, for
// logs and test failures.
func (i Instant) String() string {
	y, m, d := i.Gregorian()
	hh, mm, ss := i.Clock()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", y, m, d, hh, mm, ss)
}
