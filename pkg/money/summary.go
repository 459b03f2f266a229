package money

import "github.com/shopspring/decimal"

// Summary totals the signed amounts of one statement.
type Summary struct {
	Credits     *Money // Sum of inflows, positive
	Debits      *Money // Sum of outflows, negative
	Net         *Money
	CreditCount int
	DebitCount  int
}

// Summarize splits amounts into inflows and outflows. Zero amounts are
// counted in neither side.
func Summarize(amounts []decimal.Decimal, currencyCode string) Summary {
	var s Summary
	credits, debits := decimal.Zero, decimal.Zero
	for _, a := range amounts {
		switch {
		case a.IsPositive():
			credits = credits.Add(a)
			s.CreditCount++
		case a.IsNegative():
			debits = debits.Add(a)
			s.DebitCount++
		}
	}

	s.Credits = NewFromDecimal(credits, currencyCode)
	s.Debits = NewFromDecimal(debits, currencyCode)
	// Same currency on both sides, Add cannot fail.
	s.Net, _ = s.Credits.Add(s.Debits)
	return s
}
