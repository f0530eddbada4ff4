package calendar

// ISO 8601 week dates. Week 1 of an ISO year is the week (Monday first)
// holding January 4th, so an ISO year may start in late December of the
// previous Gregorian year or end in early January of the next one.

// WeeksInYear returns 53 for ISO long years and 52 otherwise. A year is long
// when January 1st is a Thursday, or when it is a leap year starting on a
// Wednesday.
func WeeksInYear(year int) int {
	jan1 := WeekdayOf(GregorianToDay(year, 1, 1))
	if jan1 == Thursday || (jan1 == Wednesday && IsLeapYear(year)) {
		return 53
	}
	return 52
}

// ISOYearStart returns the day number of the Monday of week 1.
func ISOYearStart(year int) int64 {
	jan4 := GregorianToDay(year, 1, 4)
	return jan4 - int64(WeekdayOf(jan4)-Monday)
}

// ValidISO reports whether (year, week, weekday) names a real day.
func ValidISO(year, week int, wd Weekday) bool {
	return wd.Valid() && week >= 1 && week <= WeeksInYear(year)
}

// ISOToDay returns the day number of an ISO week date. Weeks past the end of
// the year carry into the next ISO year.
func ISOToDay(year, week int, wd Weekday) int64 {
	return ISOYearStart(year) + int64(week-1)*7 + int64(wd-Monday)
}

// DayToISO is the inverse of ISOToDay.
func DayToISO(d int64) (year, week int, wd Weekday) {
	year, _, _ = DayToGregorian(d)
	switch {
	case d >= ISOYearStart(year+1):
		year++
	case d < ISOYearStart(year):
		year--
	}
	week = int((d-ISOYearStart(year))/7) + 1
	return year, week, WeekdayOf(d)
}
