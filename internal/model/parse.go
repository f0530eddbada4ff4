package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
)

// elementList is the grammar of an element list: UNIT=value pairs
// separated by commas or whitespace, e.g. "YR=2023,MH=Aug,DY=21" or
// "WY=MO HR=9".
type elementList struct {
	Items []*elementItem `parser:"@@ ( ','? @@ )*"`
}

type elementItem struct {
	Pos lexer.Position

	Unit  string `parser:"@Word '='"`
	Value string `parser:"@( Word | Number )"`
}

var elementLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Number", Pattern: `[-+]?\d+`},
	{Name: "Punct", Pattern: `[,=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var elementParser = participle.MustBuild[elementList](
	participle.Lexer(elementLexer),
	participle.Elide("Whitespace"),
)

// ParseElements parses an element list. Values are validated against
// their context-free bounds only; Build applies the contextual checks. An
// empty input yields no elements.
//
// Weekdays accept two-letter tokens (WY=MO) and months accept English
// names or three-letter abbreviations (MH=Aug).
func ParseElements(rules chrono.Rules, s string) ([]chrono.Element, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	list, err := elementParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse elements %q: %w", s, err)
	}

	out := make([]chrono.Element, 0, len(list.Items))
	for _, it := range list.Items {
		e, err := it.element(rules)
		if err != nil {
			return nil, fmt.Errorf("element %s=%s at column %d: %w", it.Unit, it.Value, it.Pos.Column, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (it *elementItem) element(rules chrono.Rules) (chrono.Element, error) {
	unit, err := chrono.ParseUnit(it.Unit)
	if err != nil {
		return chrono.Element{}, err
	}

	n, numErr := strconv.Atoi(it.Value)
	if numErr == nil {
		return rules.MakeElement(unit, n)
	}

	switch unit {
	case chrono.Weekday:
		return chrono.WeekdayElement(it.Value)
	case chrono.Month:
		m, ok := monthByName(it.Value)
		if !ok {
			return chrono.Element{}, fmt.Errorf("unknown month %q", it.Value)
		}
		return rules.MakeElement(chrono.Month, int(m))
	}
	return chrono.Element{}, fmt.Errorf("%s takes a number, got %q", unit, it.Value)
}

func monthByName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		full := m.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return m, true
		}
	}
	return 0, false
}

// ParsePoint parses s and builds a point in seq.
func ParsePoint(rules chrono.Rules, seq calendar.Sequence, s string) (chrono.TimePoint, error) {
	elems, err := ParseElements(rules, s)
	if err != nil {
		return chrono.TimePoint{}, err
	}
	tp, err := rules.Build(seq, elems...)
	if err != nil {
		return chrono.TimePoint{}, fmt.Errorf("%s point %q: %w", seq, s, err)
	}
	return tp, nil
}

// FormatElements renders elements in the syntax ParseElements accepts.
func FormatElements(elems []chrono.Element) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// ParseBound builds a bounding span from two anchored element lists: it
// runs from the start of start to the start of end. Without end the bound
// is start's own span, so "YR=2023" alone bounds the whole year.
func ParseBound(rules chrono.Rules, seq calendar.Sequence, start, end string) (chrono.Span, error) {
	if strings.TrimSpace(start) == "" {
		return chrono.Span{}, errors.New("bound start is required")
	}
	from, err := ParsePoint(rules, seq, start)
	if err != nil {
		return chrono.Span{}, err
	}
	if strings.TrimSpace(end) == "" {
		return from.ToSpan()
	}
	to, err := ParsePoint(rules, seq, end)
	if err != nil {
		return chrono.Span{}, err
	}
	return chrono.SpanBetween(from, to)
}
