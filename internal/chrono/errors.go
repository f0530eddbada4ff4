package chrono

import (
	"errors"
	"fmt"
)

// Error is returned by every validating operation in this package.
//
// All errors are construction-time or query-time validation failures; none
// of them is transient, so callers should never retry.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Unit and Value identify the offending element, when there is one.
	Unit  Unit
	Value int
	// HasElement is false when the error is not tied to one element.
	HasElement bool
}

// ErrorKind categorizes errors.
type ErrorKind string

const (
	// KindOutOfRange indicates an element value outside the bound implied
	// by its coarser context.
	KindOutOfRange ErrorKind = "OUT_OF_RANGE"

	// KindHole indicates the specified units are not contiguous.
	KindHole ErrorKind = "HOLE"

	// KindInconsistent indicates two elements imply contradictory facts.
	KindInconsistent ErrorKind = "INCONSISTENT_ELEMENT"

	// KindInvertedRange indicates a span whose end is before its start.
	KindInvertedRange ErrorKind = "INVERTED_RANGE"

	// KindNoOverlap indicates an intersection of disjoint spans.
	KindNoOverlap ErrorKind = "NO_OVERLAP"

	// KindUnanchored indicates a concrete span was requested from a point
	// with no year.
	KindUnanchored ErrorKind = "UNANCHORED"
)

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrOutOfRange    = &Error{Kind: KindOutOfRange}
	ErrHole          = &Error{Kind: KindHole}
	ErrInconsistent  = &Error{Kind: KindInconsistent}
	ErrInvertedRange = &Error{Kind: KindInvertedRange}
	ErrNoOverlap     = &Error{Kind: KindNoOverlap}
	ErrUnanchored    = &Error{Kind: KindUnanchored}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.HasElement {
		return fmt.Sprintf("%s: %s (%s=%d)", e.Kind, e.Message, e.Unit, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a chrono error anywhere in err's chain, or ""
// for foreign errors.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func IsOutOfRange(err error) bool    { return KindOf(err) == KindOutOfRange }
func IsHole(err error) bool          { return KindOf(err) == KindHole }
func IsInconsistent(err error) bool  { return KindOf(err) == KindInconsistent }
func IsInvertedRange(err error) bool { return KindOf(err) == KindInvertedRange }
func IsNoOverlap(err error) bool     { return KindOf(err) == KindNoOverlap }
func IsUnanchored(err error) bool    { return KindOf(err) == KindUnanchored }

func outOfRange(u Unit, value, min, max int) *Error {
	return &Error{
		Kind:       KindOutOfRange,
		Message:    fmt.Sprintf("value must be within %d..%d", min, max),
		Unit:       u,
		Value:      value,
		HasElement: true,
	}
}

func holeError(format string, args ...any) *Error {
	return &Error{Kind: KindHole, Message: fmt.Sprintf(format, args...)}
}

func inconsistent(u Unit, value int, format string, args ...any) *Error {
	return &Error{
		Kind:       KindInconsistent,
		Message:    fmt.Sprintf(format, args...),
		Unit:       u,
		Value:      value,
		HasElement: true,
	}
}
