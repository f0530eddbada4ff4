package chrono

import (
	"fmt"

	"chronoseq/internal/calendar"
)

// Element is a (unit, value) pair. Weekday values are ISO numbers 1..7.
// Elements are only produced by MakeElement and friends, so every Element
// held by a caller has passed at least the context-free range check.
type Element struct {
	unit  Unit
	value int
}

func (e Element) Unit() Unit { return e.unit }
func (e Element) Value() int { return e.value }

// String returns "UNIT=value", with weekday tokens for WY.
func (e Element) String() string {
	if e.unit == Weekday {
		return fmt.Sprintf("%s=%s", e.unit, calendar.Weekday(e.value))
	}
	return fmt.Sprintf("%s=%d", e.unit, e.value)
}

// YearRange bounds the YR values Rules accepts.
type YearRange struct {
	Min int
	Max int
}

// DefaultYearRange covers four-digit years.
var DefaultYearRange = YearRange{Min: 1, Max: 9999}

func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Rules carries the configuration consumed by element validation.
type Rules struct {
	years YearRange
}

// DefaultRules uses DefaultYearRange.
var DefaultRules = Rules{years: DefaultYearRange}

// NewRules returns Rules validating YR against years.
func NewRules(years YearRange) (Rules, error) {
	if years.Min > years.Max {
		return Rules{}, fmt.Errorf("chrono: year range %d..%d is inverted", years.Min, years.Max)
	}
	return Rules{years: years}, nil
}

func (r Rules) Years() YearRange { return r.years }

// MakeElement validates value against the bound implied by context, the
// coarser elements already fixed. Context elements that are not coarser
// than unit, or that belong to the other sequence, are ignored.
func (r Rules) MakeElement(unit Unit, value int, context ...Element) (Element, error) {
	if !unit.Valid() {
		return Element{}, fmt.Errorf("chrono: invalid unit %d", uint8(unit))
	}
	min, max := r.bounds(unit, context)
	if value < min || value > max {
		return Element{}, outOfRange(unit, value, min, max)
	}
	return Element{unit: unit, value: value}, nil
}

// MakeElement validates with DefaultRules.
func MakeElement(unit Unit, value int, context ...Element) (Element, error) {
	return DefaultRules.MakeElement(unit, value, context...)
}

// WeekdayElement builds a WY element from a two-letter token.
func WeekdayElement(token string) (Element, error) {
	wd, ok := calendar.ParseWeekday(token)
	if !ok {
		return Element{}, &Error{
			Kind:    KindOutOfRange,
			Message: fmt.Sprintf("unknown weekday token %q", token),
		}
	}
	return Element{unit: Weekday, value: int(wd)}, nil
}

// MustElement is MakeElement for values known to be valid; it panics on
// error.
func MustElement(unit Unit, value int, context ...Element) Element {
	e, err := MakeElement(unit, value, context...)
	if err != nil {
		panic(err)
	}
	return e
}

func (r Rules) bounds(unit Unit, context []Element) (min, max int) {
	year, hasYear := lookup(Year, unit, context)
	switch unit {
	case Year:
		return r.years.Min, r.years.Max
	case Month:
		return 1, 12
	case Week:
		if hasYear {
			return 1, calendar.WeeksInYear(year)
		}
		return 1, 53
	case Day:
		month, hasMonth := lookup(Month, unit, context)
		switch {
		case hasMonth && hasYear:
			return 1, calendar.DaysInMonth(year, month)
		case hasMonth:
			return 1, calendar.MaxDaysInMonth(month)
		}
		return 1, 31
	case Weekday:
		return int(calendar.Monday), int(calendar.Sunday)
	case Hour:
		return 0, 23
	}
	return 0, 59
}

// lookup finds the value of want among the context elements that are
// coarser than unit and usable as its context.
func lookup(want, unit Unit, context []Element) (int, bool) {
	if want.Level() >= unit.Level() {
		return 0, false
	}
	for _, e := range context {
		if e.unit == want {
			return e.value, true
		}
	}
	return 0, false
}
