package parser

import "regexp"

// Citibank reads Citibank Singapore statements: Date | Description |
// Amount | Balance. Amounts are signed or carry a DR/CR suffix.
type Citibank struct{ vendor }

// NewCitibank returns the Citibank adapter.
func NewCitibank() Adapter {
	return &Citibank{vendor{
		id:         "Citibank",
		signatures: []string{"CITIBANK", "CITIGROUP"},
		accounts: []*regexp.Regexp{
			accountPattern(`\d{1,4}[-\s]?\d{6}[-\s]?\d{1,4}`),
			regexp.MustCompile(`(?i)Card\s*(?:Number|No\.?)[\s:]*(\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4})`),
		},
		periods: periodPatterns(`Statement\s+Period|Billing\s+Period|From`),
		headers: defaultHeaders,
		columns: signedAmount{amount: 2, balance: 3},
	}}
}
