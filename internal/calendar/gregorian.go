// Package calendar holds the Gregorian and ISO week-date algorithms and the
// ordinal day coordinate both of them project onto.
//
// The two sequences are computed independently; they only meet at the day
// number, so a Gregorian date and an ISO date naming the same physical day
// always produce the same value.
package calendar

// Day numbers count from 1970-01-01 (day 0). The conversions follow the
// proleptic Gregorian calendar and work for any year, including year 0 and
// negative years.

const (
	daysPer400Years = 146097
	// days from 0000-03-01 to 1970-01-01
	epochShift = 719468
)

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month in year. It returns 0 for a month
// outside 1..12.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month]
}

// MaxDaysInMonth is the longest the month can be in any year.
func MaxDaysInMonth(month int) int {
	if month == 2 {
		return 29
	}
	return DaysInMonth(1, month)
}

// ValidGregorian reports whether (year, month, day) names a real day.
func ValidGregorian(year, month, day int) bool {
	return day >= 1 && day <= DaysInMonth(year, month)
}

// GregorianToDay returns the day number of a Gregorian date. Out-of-range
// days are not rejected; they simply count past the end of the month.
func GregorianToDay(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	m := int64(month)
	if m > 2 {
		m -= 3
	} else {
		m += 9
	}
	doy := (153*m+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPer400Years + doe - epochShift
}

// DayToGregorian is the inverse of GregorianToDay.
func DayToGregorian(d int64) (year, month, day int) {
	z := d + epochShift
	era := floorDiv(z, daysPer400Years)
	doe := z - era*daysPer400Years
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day = int(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		month = int(mp + 3)
	} else {
		month = int(mp - 9)
	}
	y := yoe + era*400
	if month <= 2 {
		y++
	}
	return int(y), month, day
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
