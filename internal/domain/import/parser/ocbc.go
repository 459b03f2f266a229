package parser

import "regexp"

// OCBC reads OCBC Bank statements:
// Transaction Date | Description | Withdrawal | Deposit | Balance.
type OCBC struct{ vendor }

// NewOCBC returns the OCBC adapter.
func NewOCBC() Adapter {
	return &OCBC{vendor{
		id:         "OCBC",
		signatures: []string{"OCBC", "OVERSEA-CHINESE BANKING"},
		accounts: []*regexp.Regexp{
			accountPattern(`\d{3}[-\s]?\d{6}[-\s]?\d{3}`),
			accountPattern(`\d{10,12}`),
		},
		periods: periodPatterns(`Statement\s+Period|Period|From`),
		headers: defaultHeaders,
		columns: debitCredit{withdrawal: 2, deposit: 3, balance: 4},
	}}
}
