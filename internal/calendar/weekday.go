package calendar

import "strings"

// Weekday is an ISO day of the week, Monday=1 through Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayTokens = [8]string{"", "MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Valid reports whether w is one of the seven days.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// String returns the two-letter token (MO..SU).
func (w Weekday) String() string {
	if !w.Valid() {
		return "??"
	}
	return weekdayTokens[w]
}

// ParseWeekday accepts a two-letter token, case-insensitively.
func ParseWeekday(token string) (Weekday, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	for i := Monday; i <= Sunday; i++ {
		if weekdayTokens[i] == t {
			return i, true
		}
	}
	return 0, false
}

// WeekdayOf returns the weekday of a day number. Day 0 (1970-01-01) was a
// Thursday.
func WeekdayOf(d int64) Weekday {
	return Weekday(floorMod(d+3, 7) + 1)
}
