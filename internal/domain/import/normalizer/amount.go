package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Longer tokens first so "S$" is removed before "$".
var currencyStripper = strings.NewReplacer(
	"SGD", "", "USD", "", "EUR", "", "GBP", "", "MYR", "", "HKD", "", "AUD", "",
	"US$", "", "S$", "", "$", "", "€", "", "£", "", "¥", "",
)

// ParseAmount converts a statement amount cell into a signed decimal.
// It accepts currency codes and symbols, grouping commas, accounting
// parentheses, leading or trailing minus signs and DR/CR suffixes.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ToUpper(CleanCell(raw))
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := false
	switch {
	case strings.HasSuffix(s, "DR"):
		negative = true
		s = strings.TrimSuffix(s, "DR")
	case strings.HasSuffix(s, "CR"):
		s = strings.TrimSuffix(s, "CR")
	}

	s = currencyStripper.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = true
		s = s[:len(s)-1]
	}

	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		d = d.Abs().Neg()
	}
	return d, nil
}

// NormalizeAmount is ParseAmount without the error: unparseable input
// yields zero. Callers must read zero as "unknown", not as a verified zero.
func NormalizeAmount(raw string) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// HasAmount reports whether raw holds a parseable, non-zero amount.
func HasAmount(raw string) bool {
	d, err := ParseAmount(raw)
	return err == nil && !d.IsZero()
}
