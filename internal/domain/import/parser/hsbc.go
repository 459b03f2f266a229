package parser

import "regexp"

// HSBC reads HSBC Singapore statements:
// Date | Transaction Details | Withdrawals | Deposits | Balance.
type HSBC struct{ vendor }

// NewHSBC returns the HSBC adapter.
func NewHSBC() Adapter {
	return &HSBC{vendor{
		id:         "HSBC",
		signatures: []string{"HSBC", "HONGKONG AND SHANGHAI BANKING"},
		accounts: []*regexp.Regexp{
			accountPattern(`\d{3}[-\s]?\d{6}[-\s]?\d{3}`),
			regexp.MustCompile(`(?i)A/C\s*(?:No\.?)?[\s:]*(\d{3}[-\s]?\d{6}[-\s]?\d{3})`),
		},
		periods: periodPatterns(`Statement\s+Period|Statement\s+Date|From`),
		headers: defaultHeaders,
		columns: debitCredit{withdrawal: 2, deposit: 3, balance: 4},
	}}
}
