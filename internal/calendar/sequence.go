package calendar

import (
	"fmt"
	"strings"
)

// Sequence selects which calendar resolves the date portion of a point:
// month/day for Gregorian, week/weekday for ISO.
type Sequence uint8

const (
	Gregorian Sequence = iota + 1
	ISO
)

func (s Sequence) Valid() bool {
	return s == Gregorian || s == ISO
}

func (s Sequence) String() string {
	switch s {
	case Gregorian:
		return "gregorian"
	case ISO:
		return "iso"
	default:
		return fmt.Sprintf("sequence(%d)", uint8(s))
	}
}

// Other returns the opposite sequence.
func (s Sequence) Other() Sequence {
	if s == ISO {
		return Gregorian
	}
	return ISO
}

// ParseSequence accepts "gregorian"/"gre" and "iso", case-insensitively.
func ParseSequence(name string) (Sequence, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gregorian", "gre":
		return Gregorian, nil
	case "iso":
		return ISO, nil
	default:
		return 0, fmt.Errorf("calendar: unknown sequence %q", name)
	}
}

// OrdinalDay projects a date of this sequence onto the shared day number.
// For Gregorian, a and b are month and day; for ISO, week and weekday.
func (s Sequence) OrdinalDay(year, a, b int) int64 {
	if s == ISO {
		return ISOToDay(year, a, Weekday(b))
	}
	return GregorianToDay(year, a, b)
}

// FromOrdinalDay is the inverse of OrdinalDay.
func (s Sequence) FromOrdinalDay(d int64) (year, a, b int) {
	if s == ISO {
		y, w, wd := DayToISO(d)
		return y, w, int(wd)
	}
	return DayToGregorian(d)
}

// ValidDate reports whether (year, a, b) names a real day in this sequence.
func (s Sequence) ValidDate(year, a, b int) bool {
	if s == ISO {
		return ValidISO(year, a, Weekday(b))
	}
	return ValidGregorian(year, a, b)
}

// YearStart returns the first day of year in this sequence.
func (s Sequence) YearStart(year int) int64 {
	if s == ISO {
		return ISOYearStart(year)
	}
	return GregorianToDay(year, 1, 1)
}

// PeriodsInYear returns how many months (Gregorian) or weeks (ISO) year has.
func (s Sequence) PeriodsInYear(year int) int {
	if s == ISO {
		return WeeksInYear(year)
	}
	return 12
}
