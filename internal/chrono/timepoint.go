package chrono

import (
	"fmt"

	"chronoseq/internal/calendar"
)

// TimePoint is a partially specified, single-sequence temporal
// specification: a contiguous run of units, for example MH=8 DY=21 ("every
// August 21st") or YR=2023 WK=34 WY=MO HR=9.
//
// A TimePoint is an immutable value and is comparable with ==. The zero
// value is not a valid point; use Build.
type TimePoint struct {
	seq    calendar.Sequence
	set    unitSet
	values [numUnits]int
}

// Build validates elements and returns the canonical point.
//
// Elements of the other sequence are accepted when they pin a full date
// (YR plus both of their date units); they must agree with the elements of
// seq, fill in any of its missing date units, and are then dropped.
//
// Errors: InconsistentElementError for contradicting elements,
// HoleError for non-contiguous units, OutOfRangeError for values outside
// their context's bounds.
func (r Rules) Build(seq calendar.Sequence, elems ...Element) (TimePoint, error) {
	if !seq.Valid() {
		return TimePoint{}, fmt.Errorf("chrono: invalid sequence %v", seq)
	}

	tp := TimePoint{seq: seq}
	for _, e := range elems {
		if tp.set.has(e.unit) {
			if tp.values[e.unit] != e.value {
				return TimePoint{}, inconsistent(e.unit, e.value, "unit already given as %d", tp.values[e.unit])
			}
			continue
		}
		tp.set.add(e.unit)
		tp.values[e.unit] = e.value
	}
	if tp.set.empty() {
		return TimePoint{}, holeError("no units specified")
	}

	other := seq.Other()
	if tp.set.has(unitAt(other, 1)) || tp.set.has(unitAt(other, dayLevel)) {
		if err := r.reconcile(&tp); err != nil {
			return TimePoint{}, err
		}
	}

	if err := tp.checkContiguous(); err != nil {
		return TimePoint{}, err
	}

	var ctx []Element
	for _, u := range tp.Units() {
		e, err := r.MakeElement(u, tp.values[u], ctx...)
		if err != nil {
			return TimePoint{}, err
		}
		ctx = append(ctx, e)
	}
	return tp, nil
}

// Build builds with DefaultRules.
func Build(seq calendar.Sequence, elems ...Element) (TimePoint, error) {
	return DefaultRules.Build(seq, elems...)
}

// reconcile resolves the other sequence's date elements to one day and
// folds it into tp's own sequence.
func (r Rules) reconcile(tp *TimePoint) error {
	seq, other := tp.seq, tp.seq.Other()
	oa, ob := unitAt(other, 1), unitAt(other, dayLevel)
	if !tp.set.has(Year) || !tp.set.has(oa) || !tp.set.has(ob) {
		return &Error{
			Kind:    KindInconsistent,
			Message: fmt.Sprintf("%s units on a %s point need YR, %s and %s to pin a day", other, seq, oa, ob),
		}
	}

	var ctx []Element
	for _, u := range []Unit{Year, oa, ob} {
		e, err := r.MakeElement(u, tp.values[u], ctx...)
		if err != nil {
			return err
		}
		ctx = append(ctx, e)
	}

	day := other.OrdinalDay(tp.values[Year], tp.values[oa], tp.values[ob])
	year, a, b := seq.FromOrdinalDay(day)
	if year != tp.values[Year] {
		return inconsistent(Year, tp.values[Year], "%s date lies in %s year %d", other, seq, year)
	}

	pa, pb := unitAt(seq, 1), unitAt(seq, dayLevel)
	for _, fill := range [2]struct {
		u Unit
		v int
	}{{pa, a}, {pb, b}} {
		if tp.set.has(fill.u) && tp.values[fill.u] != fill.v {
			return inconsistent(fill.u, tp.values[fill.u], "%s date implies %s=%d", other, fill.u, fill.v)
		}
		tp.set.add(fill.u)
		tp.values[fill.u] = fill.v
	}

	for _, u := range []Unit{oa, ob} {
		tp.set.remove(u)
		tp.values[u] = 0
	}
	return nil
}

func (tp TimePoint) checkContiguous() error {
	first, last := tp.levels()
	for lvl := first; lvl <= last; lvl++ {
		if !tp.set.has(unitAt(tp.seq, lvl)) {
			return holeError("%s is missing between %s and %s",
				unitAt(tp.seq, lvl), unitAt(tp.seq, first), unitAt(tp.seq, last))
		}
	}
	if first > dayLevel {
		return holeError("%s needs a day anchor; %s is unspecified",
			unitAt(tp.seq, first), unitAt(tp.seq, dayLevel))
	}
	return nil
}

// levels returns the coarsest and finest specified levels.
func (tp TimePoint) levels() (first, last int) {
	first, last = -1, -1
	for lvl := 0; lvl < numLevels; lvl++ {
		if tp.set.has(unitAt(tp.seq, lvl)) {
			if first < 0 {
				first = lvl
			}
			last = lvl
		}
	}
	return first, last
}

func (tp TimePoint) Sequence() calendar.Sequence { return tp.seq }

// IsZero reports whether tp is the zero value, which Build never returns.
func (tp TimePoint) IsZero() bool { return tp.set.empty() }

func (tp TimePoint) Has(u Unit) bool { return u.Valid() && tp.set.has(u) }

// Value returns the value of u, if specified.
func (tp TimePoint) Value(u Unit) (int, bool) {
	if !tp.Has(u) {
		return 0, false
	}
	return tp.values[u], true
}

// Units returns the specified units, coarsest first.
func (tp TimePoint) Units() []Unit {
	var out []Unit
	for _, u := range UnitsOf(tp.seq) {
		if tp.set.has(u) {
			out = append(out, u)
		}
	}
	return out
}

// Elements returns the specified elements, coarsest first.
func (tp TimePoint) Elements() []Element {
	units := tp.Units()
	out := make([]Element, len(units))
	for i, u := range units {
		out[i] = Element{unit: u, value: tp.values[u]}
	}
	return out
}

// Scope returns the coarsest specified unit. The zero TimePoint has none
// and returns an invalid Unit.
func (tp TimePoint) Scope() Unit {
	first, _ := tp.levels()
	if first < 0 {
		return numUnits
	}
	return unitAt(tp.seq, first)
}

// Under returns the finest specified unit. Every unit finer than it ranges
// over its full domain. The zero TimePoint returns an invalid Unit.
func (tp TimePoint) Under() Unit {
	_, last := tp.levels()
	if last < 0 {
		return numUnits
	}
	return unitAt(tp.seq, last)
}

// Over returns the unspecified unit directly above Scope, the boundary
// above which the point is unconstrained. Anchored points have none.
func (tp TimePoint) Over() (Unit, bool) {
	first, _ := tp.levels()
	if first <= 0 {
		return 0, false
	}
	return unitAt(tp.seq, first-1), true
}

// OverUnits returns the unspecified units coarser than Scope, coarsest
// first.
func (tp TimePoint) OverUnits() []Unit {
	first, _ := tp.levels()
	if first < 0 {
		return nil
	}
	out := make([]Unit, 0, first)
	for lvl := 0; lvl < first; lvl++ {
		out = append(out, unitAt(tp.seq, lvl))
	}
	return out
}

// UnderUnits returns the unspecified units finer than Under, coarsest
// first.
func (tp TimePoint) UnderUnits() []Unit {
	_, last := tp.levels()
	if last < 0 {
		return nil
	}
	var out []Unit
	for lvl := last + 1; lvl < numLevels; lvl++ {
		out = append(out, unitAt(tp.seq, lvl))
	}
	return out
}

// IsAnchored reports whether YR is specified, i.e. the point denotes one
// concrete span rather than a recurrence.
func (tp TimePoint) IsAnchored() bool { return tp.set.has(Year) }

// IsComplete reports whether every unit from YR down to SD is specified.
func (tp TimePoint) IsComplete() bool {
	first, last := tp.levels()
	return first == 0 && last == numLevels-1
}

// Fits reports whether the point has at least one occurrence in year. It
// is false for Feb 29 outside leap years and for ISO week 53 outside long
// years, and for anchored points in any other year.
func (tp TimePoint) Fits(year int) bool {
	if tp.IsAnchored() {
		return tp.values[Year] == year
	}
	switch {
	case tp.set.has(Month) && tp.set.has(Day):
		return calendar.ValidGregorian(year, tp.values[Month], tp.values[Day])
	case tp.set.has(Week):
		return tp.values[Week] <= calendar.WeeksInYear(year)
	}
	return true
}

// Matches reports whether i lies on the point: every specified unit holds
// its value at i, read in the point's sequence.
func (tp TimePoint) Matches(i calendar.Instant) bool {
	if tp.IsZero() {
		return false
	}
	year, a, b := tp.seq.FromOrdinalDay(i.Day)
	sec := int(i.Sec)
	at := [numLevels]int{year, a, b, sec / 3600, sec % 3600 / 60, sec % 60}
	for lvl, v := range at {
		if u := unitAt(tp.seq, lvl); tp.set.has(u) && tp.values[u] != v {
			return false
		}
	}
	return true
}

// ToSpan derives the concrete [start, end) of an anchored point: finer
// units take their minimum, and end is start plus one unit of Under.
func (tp TimePoint) ToSpan() (Span, error) {
	if !tp.IsAnchored() {
		return Span{}, &Error{
			Kind:    KindUnanchored,
			Message: fmt.Sprintf("point starting at %s has no YR; enumerate it with OccurrencesWithin", tp.Scope()),
		}
	}
	s, _ := spanOf(tp.seq, tp.set, tp.values)
	return s, nil
}

// spanOf derives the span of a fully anchored unit set. It returns false
// when the date does not exist, which only happens for sets assembled by
// the occurrence engine.
func spanOf(seq calendar.Sequence, set unitSet, values [numUnits]int) (Span, bool) {
	last := -1
	for lvl := 0; lvl < numLevels; lvl++ {
		if set.has(unitAt(seq, lvl)) {
			last = lvl
		}
	}

	year, a, b := values[Year], 1, 1
	if u := unitAt(seq, 1); set.has(u) {
		a = values[u]
	}
	if u := unitAt(seq, dayLevel); set.has(u) {
		b = values[u]
	}
	if !seq.ValidDate(year, a, b) {
		return Span{}, false
	}

	sec := values[Hour]*3600 + values[Minute]*60 + values[Second]
	start := calendar.NewInstant(seq.OrdinalDay(year, a, b), int64(sec))
	end := Shift(start, seq, unitAt(seq, last), 1)
	return Span{start: start, end: end}, true
}
