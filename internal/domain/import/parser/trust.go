package parser

import "regexp"

// Trust reads Trust Bank statements: Date | Description | Amount | Balance.
type Trust struct{ vendor }

// NewTrust returns the Trust Bank adapter.
func NewTrust() Adapter {
	return &Trust{vendor{
		id:         "Trust",
		signatures: []string{"TRUST BANK"},
		accounts:   []*regexp.Regexp{accountPattern(`\d{4}[-\s]?\d{4}[-\s]?\d{4}`)},
		periods:    periodPatterns(`Statement\s+Period|Period|From`),
		headers:    defaultHeaders,
		columns:    signedAmount{amount: 2, balance: 3},
	}}
}
