package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DBS reads DBS Bank / POSB statements:
// Date | Description | Withdrawal | Deposit | Balance.
type DBS struct{ vendor }

// NewDBS returns the DBS adapter.
func NewDBS() Adapter {
	return &DBS{vendor{
		id:         "DBS",
		signatures: []string{"DBS BANK", "DBS LTD", "POSB"},
		accounts:   []*regexp.Regexp{accountPattern(`\d{3}[-\s]?\d{1,6}[-\s]?\d{1}`)},
		periods:    periodPatterns(`Statement\s+Period|From`),
		headers:    []string{"DATE", "DESCRIPTION", "TRANSACTION", "BALANCE", "WITHDRAWAL", "DEPOSIT"},
		columns:    dbsColumns{debitCredit{withdrawal: 2, deposit: 3, balance: 4}},
	}}
}

// dbsColumns handles the short three-cell rows DBS emits when a line only
// carries one amount: a minus sign or parenthesis marks a withdrawal.
type dbsColumns struct {
	debitCredit
}

func (c dbsColumns) amounts(cells []string) (decimal.Decimal, decimal.NullDecimal) {
	if len(cells) != 3 {
		return c.debitCredit.amounts(cells)
	}
	v := cells[2]
	if strings.ContainsAny(v, "-(") {
		return withdrawalOrDeposit(v, ""), decimal.NullDecimal{}
	}
	return withdrawalOrDeposit("", v), decimal.NullDecimal{}
}
