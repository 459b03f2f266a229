package parser

import "regexp"

// SCB reads Standard Chartered statements:
// Date | Description | Withdrawal | Deposit | Balance.
//
// "SCB" is a short signature and may match unrelated text; it is kept
// because statement headers often carry only the initialism.
type SCB struct{ vendor }

// NewSCB returns the Standard Chartered adapter.
func NewSCB() Adapter {
	return &SCB{vendor{
		id:         "SCB",
		signatures: []string{"STANDARD CHARTERED", "SCB"},
		accounts:   []*regexp.Regexp{accountPattern(`\d{2,4}[-\s]?\d{4,6}[-\s]?\d{2,4}`)},
		periods:    periodPatterns(`Statement\s+Period|Period|From`),
		headers:    defaultHeaders,
		columns:    debitCredit{withdrawal: 2, deposit: 3, balance: 4},
	}}
}
