// Package numwords spells out integers in English using the Indian
// numbering scale (crore, lakh, thousand, hundred).
package numwords

import (
	"errors"
	"fmt"
	"strings"
)

// Max is the largest value ToWords accepts: eight digits, so the crore
// group never exceeds 9.
const Max = 99999999

// ErrOutOfRange is returned for values outside [0, Max].
var ErrOutOfRange = errors.New("number out of range")

var ones = [20]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = [10]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// ToWords returns n in words, e.g. 1234567 -> "Twelve Lakh Thirty Four
// Thousand Five Hundred and Sixty Seven". Zero renders as "".
func ToWords(n int) (string, error) {
	if n < 0 || n > Max {
		return "", fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, n, Max)
	}

	groups := []struct {
		value int
		scale string
	}{
		{n / 10000000, "Crore"},
		{(n / 100000) % 100, "Lakh"},
		{(n / 1000) % 100, "Thousand"},
		{(n / 100) % 10, "Hundred"},
	}

	var parts []string
	for _, g := range groups {
		if w := group(g.value); w != "" {
			parts = append(parts, w, g.scale)
		}
	}
	if n > 100 && n%100 > 0 {
		parts = append(parts, "and")
	}
	if w := group(n % 100); w != "" {
		parts = append(parts, w)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// group renders a value in [0, 99]. The tens word is always joined to the
// ones word with a space; the trim drops it again when the ones digit is 0.
func group(g int) string {
	if g < 20 {
		return ones[g]
	}
	return strings.TrimSpace(tens[g/10] + " " + ones[g%10])
}
