// Package sniffer probes the table layout of a document no adapter claimed.
// It finds the header row, guesses which column holds which field and
// infers the regional number and date dialect from sample rows.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
)

// Header keywords seen on Singapore statements.
var headerKeywords = []string{
	"date", "transaction date", "value date", "posting date",
	"description", "details", "particulars", "transaction",
	"withdrawal", "withdrawals", "deposit", "deposits", "debit", "credit",
	"amount", "balance",
}

// maxHeaderScan bounds how many leading rows are considered for the header.
const maxHeaderScan = 20

var (
	ErrNoRows         = errors.New("document has no table rows")
	ErrNoHeadersFound = errors.New("could not find table headers")
)

// Layout is the probed table layout.
type Layout struct {
	HeaderIndex int      // Index of the header row within the probed rows
	Headers     []string // Cleaned header cells
	Fingerprint string   // SHA256 of normalized headers
	SampleRows  []extractor.Row
	Columns     *ColumnSuggestions
	Dialect     *RegionalDialect
}

// ColumnSuggestions provides auto-detected column indices
type ColumnSuggestions struct {
	DateCol       int  // -1 if not found
	DescCol       int  // -1 if not found
	AmountCol     int  // Single signed amount column, -1 if separate debit/credit
	DebitCol      int  // Withdrawal column
	CreditCol     int  // Deposit column
	BalanceCol    int  // -1 if not found
	IsDoubleEntry bool // True if separate withdrawal/deposit columns detected
}

// RegionalDialect represents inferred regional formatting for amounts and dates
type RegionalDialect struct {
	DecimalSeparator   rune    // '.' or ','
	ThousandsSeparator rune    // ',' or '.'
	DateFormat         string  // "DD/MM/YYYY" or "MM/DD/YYYY"
	Confidence         float64 // 0.0-1.0
}

// Sniff finds the header row among rows and probes the columns below it.
func Sniff(rows []extractor.Row) (*Layout, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	idx, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	headers := make([]string, len(rows[idx]))
	for i, h := range rows[idx] {
		headers[i] = strings.TrimSpace(h)
	}

	samples := sampleRows(rows, idx+1, 5)
	cols := SuggestColumns(headers)

	amountIdx := cols.AmountCol
	if amountIdx < 0 {
		amountIdx = cols.DebitCol
	}

	return &Layout{
		HeaderIndex: idx,
		Headers:     headers,
		Fingerprint: generateFingerprint(headers),
		SampleRows:  samples,
		Columns:     cols,
		Dialect:     ProbeDialect(samples, amountIdx, cols.DateCol),
	}, nil
}

// SuggestColumns attempts to auto-match columns based on header names
func SuggestColumns(headers []string) *ColumnSuggestions {
	s := &ColumnSuggestions{
		DateCol:    -1,
		DescCol:    -1,
		AmountCol:  -1,
		DebitCol:   -1,
		CreditCol:  -1,
		BalanceCol: -1,
	}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))

		switch {
		case s.DateCol == -1 && strings.Contains(h, "date"):
			s.DateCol = i
		case s.DescCol == -1 && (strings.Contains(h, "descri") || strings.Contains(h, "details") ||
			strings.Contains(h, "particulars") || h == "transaction"):
			s.DescCol = i
		case s.DebitCol == -1 && (strings.Contains(h, "withdraw") || strings.Contains(h, "debit")):
			s.DebitCol = i
		case s.CreditCol == -1 && (strings.Contains(h, "deposit") || strings.Contains(h, "credit")):
			s.CreditCol = i
		case s.BalanceCol == -1 && strings.Contains(h, "balance"):
			s.BalanceCol = i
		case s.AmountCol == -1 && strings.Contains(h, "amount"):
			s.AmountCol = i
		}
	}

	s.IsDoubleEntry = s.DebitCol != -1 && s.CreditCol != -1
	if s.IsDoubleEntry {
		s.AmountCol = -1
	}
	return s
}

// ProbeDialect analyzes sample rows to infer decimal separator and date order.
func ProbeDialect(rows []extractor.Row, amountIdx, dateIdx int) *RegionalDialect {
	dialect := &RegionalDialect{
		DecimalSeparator:   '.',
		ThousandsSeparator: ',',
		DateFormat:         "DD/MM/YYYY",
		Confidence:         0.5,
	}

	europeanHints := 0
	usHints := 0
	dayFirst := false
	monthFirst := false

	for _, row := range rows {
		if amountIdx >= 0 && amountIdx < len(row) && row[amountIdx] != "" {
			switch hint := analyzeAmountFormat(row[amountIdx]); {
			case hint > 0:
				europeanHints++
			case hint < 0:
				usHints++
			}
		}

		if dateIdx >= 0 && dateIdx < len(row) && row[dateIdx] != "" {
			switch analyzeDateFormat(row[dateIdx]) {
			case 1:
				dayFirst = true
			case -1:
				monthFirst = true
			}
		}
	}

	if europeanHints > usHints {
		dialect.DecimalSeparator = ','
		dialect.ThousandsSeparator = '.'
	}

	if total := europeanHints + usHints; total > 0 {
		winning := max(europeanHints, usHints)
		dialect.Confidence = float64(winning) / float64(total)
	}

	// Singapore banks print day first; only flip on unambiguous evidence.
	if monthFirst && !dayFirst {
		dialect.DateFormat = "MM/DD/YYYY"
	}

	return dialect
}

// analyzeAmountFormat returns: >0 for European, <0 for US, 0 for ambiguous
func analyzeAmountFormat(val string) int {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			return r
		}
		return -1
	}, val)

	if cleaned == "" {
		return 0
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		// Both present: last one is decimal separator
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			return 1
		}
		return -1

	case hasComma:
		if len(cleaned)-strings.LastIndex(cleaned, ",")-1 <= 2 {
			return 1
		}
		return 0

	case hasDot:
		if len(cleaned)-strings.LastIndex(cleaned, ".")-1 <= 2 {
			return -1
		}
		return 0
	}

	return 0
}

// analyzeDateFormat returns 1 when a numeric date is day first (first part
// above 12), -1 when it is month first (second part above 12) and 0 when
// it cannot tell.
func analyzeDateFormat(dateVal string) int {
	parts := strings.FieldsFunc(dateVal, func(r rune) bool {
		return r == '/' || r == '-' || r == '.' || r == ' '
	})
	if len(parts) < 2 {
		return 0
	}
	first, ok1 := leadingNumber(parts[0])
	second, ok2 := leadingNumber(parts[1])
	switch {
	case ok1 && first > 12 && first <= 31:
		return 1
	case ok1 && ok2 && first <= 12 && second > 12 && second <= 31:
		return -1
	}
	return 0
}

func leadingNumber(s string) (int, bool) {
	n, digits := 0, 0
	for _, c := range strings.TrimSpace(s) {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		digits++
	}
	return n, digits > 0
}

// findHeaderRow returns the row with the most header keywords, preferring
// wider rows on ties.
func findHeaderRow(rows []extractor.Row) (int, error) {
	best, bestHits, bestWidth := -1, 0, 0

	for i, row := range rows {
		if i >= maxHeaderScan {
			break
		}
		hits, width := 0, 0
		for _, c := range row {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			width++
			for _, kw := range headerKeywords {
				if strings.Contains(c, kw) {
					hits++
					break
				}
			}
		}
		if hits < 2 {
			continue
		}
		if hits > bestHits || (hits == bestHits && width > bestWidth) {
			best, bestHits, bestWidth = i, hits, width
		}
	}

	if best < 0 {
		return 0, ErrNoHeadersFound
	}
	return best, nil
}

// generateFingerprint creates a unique hash from header names
func generateFingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

// sampleRows returns up to n non-empty rows starting at start.
func sampleRows(rows []extractor.Row, start, n int) []extractor.Row {
	var out []extractor.Row
	for i := start; i < len(rows) && len(out) < n; i++ {
		if strings.TrimSpace(rows[i].Joined()) == "" {
			continue
		}
		out = append(out, rows[i])
	}
	return out
}
