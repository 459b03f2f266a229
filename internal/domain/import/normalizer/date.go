package normalizer

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Day-first layouts, tried before the permissive fallback.
var dateLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2 Jan 06",
	"2-Jan-06",
	"02Jan2006",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2.1.2006",
	"2006-01-02",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	time.RFC3339,
}

// Layouts printed without a year.
var yearlessLayouts = []string{
	"2 Jan",
	"2 January",
	"2-Jan",
	"02Jan",
	"2/1",
}

const (
	minYear = 1970
	maxYear = 2100
)

// DateParser parses statement dates. The zero value is ready to use.
type DateParser struct {
	// Year fills in dates printed without one. Zero means the current year.
	Year int
	// NotAfter, when set, moves a yearless date back one year if it
	// would otherwise fall after it (December lines on a January statement).
	NotAfter time.Time
}

// ParseDate parses s with a zero DateParser.
func ParseDate(s string) (time.Time, bool) {
	return DateParser{}.Parse(s)
}

// Parse returns the calendar date in s at midnight UTC, or false.
func (p DateParser) Parse(raw string) (time.Time, bool) {
	s := CleanCell(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncate(t)
		}
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return p.withYear(t)
		}
	}

	// Permissive fallback. Day-first matches the statements we read.
	if !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC,
		dateparse.PreferMonthFirst(false),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err != nil {
		return time.Time{}, false
	}
	return truncate(t)
}

func (p DateParser) withYear(t time.Time) (time.Time, bool) {
	year := p.Year
	if year == 0 {
		year = time.Now().Year()
	}
	d := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if !p.NotAfter.IsZero() && d.After(p.NotAfter) {
		d = d.AddDate(-1, 0, 0)
	}
	return d, true
}

func truncate(t time.Time) (time.Time, bool) {
	if t.Year() < minYear || t.Year() > maxYear {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
