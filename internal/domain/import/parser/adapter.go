// Package parser recognises which bank produced a statement and maps its
// text and table rows into normalized transactions.
//
// Every supported bank is an Adapter. Adapters are registered in a fixed
// order; detection tries them in that order and the first match wins.
package parser

import (
	"regexp"
	"strings"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/normalizer"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// Adapter is the per-bank strategy.
type Adapter interface {
	// ID is the vendor identifier, e.g. "DBS".
	ID() string
	// Signatures are the upper-case markers Detect looks for.
	Signatures() []string
	Detect(text string) bool
	ExtractAccountInfo(text string) statement.AccountInfo
	// ExtractTransactions maps table rows. info supplies the statement
	// period used to resolve dates printed without a year.
	ExtractTransactions(rows []extractor.Row, info statement.AccountInfo) Extraction
}

// Extraction is the outcome of mapping one document's rows.
type Extraction struct {
	Transactions []statement.ParsedTransaction
	Diagnostics  Diagnostics
}

// Headers used by most vendors to mark non-transaction rows.
var defaultHeaders = []string{"DATE", "DESCRIPTION", "TRANSACTION", "BALANCE"}

// vendor carries everything that differs between banks. Each bank type
// embeds one and gets the Adapter methods from it.
type vendor struct {
	id         string
	signatures []string
	accounts   []*regexp.Regexp
	periods    []*regexp.Regexp
	headers    []string
	columns    columnLayout
}

func (v *vendor) ID() string { return v.id }

func (v *vendor) Signatures() []string {
	out := make([]string, len(v.signatures))
	copy(out, v.signatures)
	return out
}

// Detect is a case-insensitive substring match against the signatures.
func (v *vendor) Detect(text string) bool {
	upper := strings.ToUpper(text)
	for _, sig := range v.signatures {
		if strings.Contains(upper, sig) {
			return true
		}
	}
	return false
}

// ExtractAccountInfo applies the account and period patterns in order;
// the first match of each kind wins. Missing values stay nil.
func (v *vendor) ExtractAccountInfo(text string) statement.AccountInfo {
	var info statement.AccountInfo

	for _, re := range v.accounts {
		if m := re.FindStringSubmatch(text); m != nil {
			acct := normalizer.AccountNumber(m[1])
			info.AccountNumber = &acct
			break
		}
	}

	for _, re := range v.periods {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, okStart := normalizer.ParseDate(m[1])
		end, okEnd := normalizer.ParseDate(m[2])
		if okStart {
			info.PeriodStart = &start
		}
		if okEnd {
			info.PeriodEnd = &end
		}
		if okStart || okEnd {
			break
		}
	}

	return info
}

// isHeader reports whether any header keyword occurs in the joined cells.
func (v *vendor) isHeader(cells []string) bool {
	joined := strings.ToUpper(strings.Join(cells, " "))
	for _, h := range v.headers {
		if strings.Contains(joined, h) {
			return true
		}
	}
	return false
}

// Common pattern fragments.
const (
	accountLabel = `(?i)Account\s*(?:Number|No\.?)[\s:]*`
	periodDates  = `[\s:]*(\d{1,2}\s+\w+\s+\d{4})\s*(?:to|-)\s*(\d{1,2}\s+\w+\s+\d{4})`
	periodSlash  = `[\s:]*(\d{1,2}/\d{1,2}/\d{4})\s*(?:to|-)\s*(\d{1,2}/\d{1,2}/\d{4})`
)

func accountPattern(digits string) *regexp.Regexp {
	return regexp.MustCompile(accountLabel + `(` + digits + `)`)
}

func periodPatterns(labels string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:` + labels + `)` + periodDates),
		regexp.MustCompile(`(?i)(?:` + labels + `)` + periodSlash),
	}
}
