// Package normalizer turns raw statement cells into canonical values.
// None of its functions fail loudly: bad input yields a zero value or
// a false flag and the caller decides whether the row is usable.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanCell applies NFKC normalization and collapses runs of whitespace.
// NFKC folds full-width digits and non-breaking spaces that PDF text
// layers often carry.
func CleanCell(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// CleanRow returns a copy of row with every cell cleaned.
func CleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = CleanCell(c)
	}
	return out
}

// AccountNumber strips whitespace and hyphens from a matched account number.
func AccountNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
