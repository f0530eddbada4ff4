package chrono

import (
	"fmt"
	"strings"

	"chronoseq/internal/calendar"
)

// Unit is a temporal unit, ordered coarsest to finest within each sequence.
type Unit uint8

const (
	Year    Unit = iota // YR
	Month               // MH, Gregorian
	Week                // WK, ISO
	Day                 // DY, Gregorian day of month
	Weekday             // WY, ISO day of week
	Hour                // HR
	Minute              // ME
	Second              // SD

	numUnits
)

var unitCodes = [numUnits]string{"YR", "MH", "WK", "DY", "WY", "HR", "ME", "SD"}

// Granularity level of each unit; units sharing a level are the two
// sequences' versions of the same slot.
var unitLevels = [numUnits]int{0, 1, 1, 2, 2, 3, 4, 5}

// Number of slots a fully specified point has.
const numLevels = 6

// dayLevel is the finest level a calendar date reaches.
const dayLevel = 2

var sequenceUnits = map[calendar.Sequence][numLevels]Unit{
	calendar.Gregorian: {Year, Month, Day, Hour, Minute, Second},
	calendar.ISO:       {Year, Week, Weekday, Hour, Minute, Second},
}

// String returns the two-letter unit code.
func (u Unit) String() string {
	if u >= numUnits {
		return fmt.Sprintf("unit(%d)", uint8(u))
	}
	return unitCodes[u]
}

func (u Unit) Valid() bool { return u < numUnits }

// Level returns the granularity slot, 0 for YR through 5 for SD.
func (u Unit) Level() int { return unitLevels[u] }

// Sequence returns the sequence owning u. Neutral units (YR, HR, ME, SD)
// return false.
func (u Unit) Sequence() (calendar.Sequence, bool) {
	switch u {
	case Month, Day:
		return calendar.Gregorian, true
	case Week, Weekday:
		return calendar.ISO, true
	}
	return 0, false
}

// ParseUnit accepts a two-letter code, case-insensitively.
func ParseUnit(code string) (Unit, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	for u := Year; u < numUnits; u++ {
		if unitCodes[u] == c {
			return u, nil
		}
	}
	return 0, fmt.Errorf("chrono: unknown unit %q", code)
}

// UnitsOf returns the six units of seq, coarsest first.
func UnitsOf(seq calendar.Sequence) []Unit {
	units := sequenceUnits[seq]
	return units[:]
}

// unitAt returns the unit of seq at a granularity level.
func unitAt(seq calendar.Sequence, level int) Unit {
	return sequenceUnits[seq][level]
}

// unitSet is a bitset of units.
type unitSet uint8

func (s unitSet) has(u Unit) bool { return s&(1<<u) != 0 }
func (s *unitSet) add(u Unit)     { *s |= 1 << u }
func (s *unitSet) remove(u Unit)  { *s &^= 1 << u }
func (s unitSet) empty() bool     { return s == 0 }
