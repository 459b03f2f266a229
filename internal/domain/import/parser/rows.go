package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/normalizer"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// minCells is the shortest row that can hold date, description and amount.
const minCells = 3

// columnLayout reads the amount and balance from a row's cells.
// Date and description are always columns 0 and 1.
type columnLayout interface {
	amounts(cells []string) (decimal.Decimal, decimal.NullDecimal)
}

// debitCredit is the Date | Description | Withdrawal | Deposit | Balance family.
type debitCredit struct {
	withdrawal, deposit, balance int
}

func (c debitCredit) amounts(cells []string) (decimal.Decimal, decimal.NullDecimal) {
	return withdrawalOrDeposit(cellAt(cells, c.withdrawal), cellAt(cells, c.deposit)),
		optionalAmount(cellAt(cells, c.balance))
}

// signedAmount is the Date | Description | Amount | Balance family.
type signedAmount struct {
	amount, balance int
}

func (c signedAmount) amounts(cells []string) (decimal.Decimal, decimal.NullDecimal) {
	return normalizer.NormalizeAmount(cellAt(cells, c.amount)),
		optionalAmount(cellAt(cells, c.balance))
}

// withdrawalOrDeposit gives -|withdrawal| when a withdrawal is present,
// otherwise +|deposit|. Neither present yields zero.
func withdrawalOrDeposit(withdrawal, deposit string) decimal.Decimal {
	if withdrawal != "" {
		return normalizer.NormalizeAmount(withdrawal).Abs().Neg()
	}
	if deposit != "" {
		return normalizer.NormalizeAmount(deposit).Abs()
	}
	return decimal.Zero
}

func optionalAmount(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(normalizer.NormalizeAmount(s))
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// ExtractTransactions runs the shared row loop with the vendor's headers
// and column layout. Rows that cannot become a transaction are dropped
// and counted; nothing here returns an error.
func (v *vendor) ExtractTransactions(rows []extractor.Row, info statement.AccountInfo) Extraction {
	dates := dateParserFor(info)
	ex := Extraction{Diagnostics: newDiagnostics()}
	for _, row := range rows {
		v.extractRow(row, dates, &ex)
	}
	return ex
}

func (v *vendor) extractRow(row extractor.Row, dates normalizer.DateParser, ex *Extraction) {
	ex.Diagnostics.Rows++
	defer func() {
		if r := recover(); r != nil {
			ex.Diagnostics.drop(DropPanic)
		}
	}()

	cells := normalizer.CleanRow(row)
	if v.isHeader(cells) {
		ex.Diagnostics.drop(DropHeader)
		return
	}

	// A wrapped description line: no date, no amounts, text only. Sheets
	// trim trailing empty cells, so this comes before the length check.
	if len(cells) >= 2 && cells[0] == "" && cells[1] != "" && !anyValue(cells[2:]) && len(ex.Transactions) > 0 {
		last := &ex.Transactions[len(ex.Transactions)-1]
		last.Description = last.Description + " " + cells[1]
		ex.Diagnostics.Continuations++
		return
	}

	if len(cells) < minCells {
		ex.Diagnostics.drop(DropShortRow)
		return
	}

	date, ok := dates.Parse(cells[0])
	if !ok {
		ex.Diagnostics.drop(DropBadDate)
		return
	}
	desc := strings.TrimSpace(cells[1])
	if desc == "" {
		ex.Diagnostics.drop(DropEmptyDescription)
		return
	}

	amount, balance := v.columns.amounts(cells)
	ex.Transactions = append(ex.Transactions, statement.ParsedTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Balance:     balance,
	})
}

func anyValue(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}

// dateParserFor resolves yearless dates against the statement period.
func dateParserFor(info statement.AccountInfo) normalizer.DateParser {
	var p normalizer.DateParser
	switch {
	case info.PeriodEnd != nil:
		p.Year = info.PeriodEnd.Year()
		p.NotAfter = *info.PeriodEnd
	case info.PeriodStart != nil:
		p.Year = info.PeriodStart.Year()
	}
	return p
}
