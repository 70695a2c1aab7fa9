// Package format turns raw form input into the strings placed in a
// document. Every function here is fail-soft: bad input degrades to an
// empty or unchanged string instead of an error.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/numwords"
)

// Default layouts: ISO dates in, "05 March 2024" out.
const (
	DefaultInputLayout  = "2006-01-02"
	DefaultOutputLayout = "02 January 2006"
)

// Formatter converts raw values according to their field type.
type Formatter struct {
	InputLayout  string
	OutputLayout string
}

// New returns a Formatter, substituting the default layouts for empty ones.
func New(inputLayout, outputLayout string) *Formatter {
	if inputLayout == "" {
		inputLayout = DefaultInputLayout
	}
	if outputLayout == "" {
		outputLayout = DefaultOutputLayout
	}
	return &Formatter{InputLayout: inputLayout, OutputLayout: outputLayout}
}

// Format returns the display string for raw under typ.
func (f *Formatter) Format(raw string, typ fields.Type) string {
	switch typ {
	case fields.TypeNumber:
		s, _ := f.Number(raw)
		return s
	case fields.TypeDate:
		s, _ := f.Date(raw)
		return s
	default:
		return raw
	}
}

// Number parses raw as a base-10 integer and returns its canonical decimal
// form. Unparsable input yields "" and ok=false.
func (f *Formatter) Number(raw string) (string, bool) {
	n, err := ParseInt(raw)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n), true
}

// Words returns raw spelled out in words. Unparsable or out-of-range input
// yields "" and a non-nil error describing why.
func (f *Formatter) Words(raw string) (string, error) {
	n, err := ParseInt(raw)
	if err != nil {
		return "", err
	}
	return numwords.ToWords(n)
}

// Date re-renders raw from InputLayout into OutputLayout. When raw does not
// parse, it is returned unchanged with ok=false.
func (f *Formatter) Date(raw string) (string, bool) {
	t, err := time.Parse(f.InputLayout, strings.TrimSpace(raw))
	if err != nil {
		return raw, false
	}
	return t.Format(f.OutputLayout), true
}

// ParseInt parses a trimmed base-10 integer.
func ParseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", raw, err)
	}
	return n, nil
}

// OrdinalDate renders t as "5th March, 2024".
func OrdinalDate(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%d%s %s", day, ordinalSuffix(day), t.Format("January, 2006"))
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
