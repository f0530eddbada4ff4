// Package chrono models partially specified time points over the Gregorian
// and ISO week sequences and derives spans and recurrences from them.
//
// The layers, leaf first:
//   - Element: a (Unit, value) pair validated against its coarser context.
//   - TimePoint: a contiguous run of elements in one sequence, e.g. MH=8
//     DY=21 or YR=2023 WK=34 WY=MO HR=9.
//   - Span: a half-open range of calendar.Instant values.
//   - OccurrencesWithin / Recurrence: lazy enumeration of concrete spans.
//   - Compare / Overlaps / Intersect / Relate: ordering on the shared
//     ordinal coordinate, so Gregorian and ISO spans compare directly.
//
// Everything is an immutable value and safe for concurrent use. Failures
// are *Error values; match them with errors.Is against ErrOutOfRange,
// ErrHole, ErrInconsistent, ErrInvertedRange, ErrNoOverlap or
// ErrUnanchored.
package chrono
