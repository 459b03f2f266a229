package parser

import "regexp"

// GXS reads GXS Bank statements: Date | Description | Amount | Balance,
// with the amount already signed.
type GXS struct{ vendor }

// NewGXS returns the GXS Bank adapter.
func NewGXS() Adapter {
	return &GXS{vendor{
		id:         "GXS",
		signatures: []string{"GXS BANK", "GXS"},
		accounts:   []*regexp.Regexp{accountPattern(`\d{10,12}`)},
		periods:    periodPatterns(`Statement\s+Period|Period|From`),
		headers:    defaultHeaders,
		columns:    signedAmount{amount: 2, balance: 3},
	}}
}
