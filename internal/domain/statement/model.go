// Package statement holds the values that flow out of the statement parsing
// pipeline: parsed transactions, account information, parse results and the
// category annotations attached to them.
package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is one statement line after normalization.
// Amount is positive for inflow (credit) and negative for outflow (debit),
// whatever column convention the source bank uses.
type ParsedTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.NullDecimal
}

// IsCredit reports whether the transaction moved money into the account.
func (t ParsedTransaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// AccountInfo is extracted once per document on a best-effort basis.
// Missing fields are left nil.
type AccountInfo struct {
	AccountNumber *string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
}

// HasPeriod reports whether both ends of the statement period were found.
func (a AccountInfo) HasPeriod() bool {
	return a.PeriodStart != nil && a.PeriodEnd != nil
}

// ParseResult is the assembled output for one document.
type ParseResult struct {
	BankName     string
	AccountInfo  AccountInfo
	Transactions []ParsedTransaction
}

// Category is one value of the closed spending taxonomy.
type Category string

// CategoryAssignment is derived, non-authoritative metadata for a transaction.
type CategoryAssignment struct {
	Category   Category
	Confidence float64
}

// CategorizedTransaction pairs a parsed transaction with its assignment.
type CategorizedTransaction struct {
	ParsedTransaction
	CategoryAssignment
	AutoCategorized bool
}

// Categorizer assigns a category to a description and signed amount.
type Categorizer interface {
	Categorize(description string, amount decimal.Decimal) CategoryAssignment
}

// Annotate runs c over every transaction of r, preserving order.
// The returned slice is parallel to r.Transactions.
func Annotate(r *ParseResult, c Categorizer) []CategorizedTransaction {
	if r == nil {
		return nil
	}
	out := make([]CategorizedTransaction, len(r.Transactions))
	for i, tx := range r.Transactions {
		out[i] = CategorizedTransaction{
			ParsedTransaction:  tx,
			CategoryAssignment: c.Categorize(tx.Description, tx.Amount),
			AutoCategorized:    true,
		}
	}
	return out
}
