package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// signatureFixtures holds one header snippet per vendor.
var signatureFixtures = map[string]string{
	"HSBC":     "The Hongkong and Shanghai Banking Corporation Limited\nHSBC Premier Statement",
	"DBS":      "DBS Bank Ltd\nConsolidated Statement",
	"OCBC":     "OCBC Bank\nOversea-Chinese Banking Corporation Limited",
	"Citibank": "Citibank Singapore Limited\nStatement of Account",
	"SCB":      "Standard Chartered Bank (Singapore) Limited",
	"Trust":    "Trust Bank Singapore Limited",
	"GXS":      "GXS Bank Pte. Ltd.",
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "amount = %s, want %s", got, want)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdapters_DetectOwnSignatureOnly(t *testing.T) {
	for _, a := range DefaultRegistry().Adapters() {
		for vendor, text := range signatureFixtures {
			t.Run(a.ID()+"/"+vendor, func(t *testing.T) {
				assert.Equal(t, a.ID() == vendor, a.Detect(text))
			})
		}
	}
}

func TestAdapters_DetectIsCaseInsensitive(t *testing.T) {
	assert.True(t, NewDBS().Detect("dbs bank ltd"))
	assert.True(t, NewGXS().Detect("gxs bank"))
	assert.False(t, NewGXS().Detect(""))
}

func TestAdapters_NeverParseBalanceRows(t *testing.T) {
	rows := []extractor.Row{
		{"01 Jan 2024", "Balance B/F", "", "", "100.00"},
		{"02 Jan 2024", "Opening balance", "10.00", "", "90.00"},
		{"03 Jan 2024", "Card payment", "BALANCE", "5.00"},
		{"balance", "x", "y"},
	}

	for _, a := range DefaultRegistry().Adapters() {
		t.Run(a.ID(), func(t *testing.T) {
			ex := a.ExtractTransactions(rows, statement.AccountInfo{})
			assert.Empty(t, ex.Transactions)
			assert.Equal(t, len(rows), ex.Diagnostics.Dropped[DropHeader])
		})
	}
}

func TestDebitCreditAdapters_EndToEndTable(t *testing.T) {
	rows := []extractor.Row{
		{"01 Jan 2024", "Grab Ride", "12.50", "", "987.50"},
		{"02 Jan 2024", "Salary", "", "3000.00", "3987.50"},
		{"DATE", "DESC", "W", "D", "BAL"},
	}

	for _, a := range []Adapter{NewHSBC(), NewDBS(), NewOCBC(), NewSCB()} {
		t.Run(a.ID(), func(t *testing.T) {
			ex := a.ExtractTransactions(rows, statement.AccountInfo{})
			require.Len(t, ex.Transactions, 2)

			first, second := ex.Transactions[0], ex.Transactions[1]
			assert.Equal(t, date(2024, 1, 1), first.Date)
			assert.Equal(t, "Grab Ride", first.Description)
			assertAmount(t, "-12.50", first.Amount)
			require.True(t, first.Balance.Valid)
			assertAmount(t, "987.50", first.Balance.Decimal)

			assert.Equal(t, "Salary", second.Description)
			assertAmount(t, "3000.00", second.Amount)

			assert.Equal(t, 3, ex.Diagnostics.Rows)
			assert.Equal(t, 1, ex.Diagnostics.Dropped[DropHeader])
			assert.Equal(t, 1, ex.Diagnostics.TotalDropped())
		})
	}
}

func TestSignedAmountAdapters(t *testing.T) {
	rows := []extractor.Row{
		{"01 Jan 2024", "Grab Ride", "-12.50", "987.50"},
		{"02 Jan 2024", "Salary", "3,000.00", "3987.50"},
		{"03 Jan 2024", "Card repayment", "250.00 DR", "3737.50"},
		{"04 Jan 2024", "Cashback", "(1.00)", ""},
	}

	for _, a := range []Adapter{NewCitibank(), NewTrust(), NewGXS()} {
		t.Run(a.ID(), func(t *testing.T) {
			ex := a.ExtractTransactions(rows, statement.AccountInfo{})
			require.Len(t, ex.Transactions, 4)
			assertAmount(t, "-12.50", ex.Transactions[0].Amount)
			assertAmount(t, "3000", ex.Transactions[1].Amount)
			assertAmount(t, "-250", ex.Transactions[2].Amount)
			assertAmount(t, "-1", ex.Transactions[3].Amount)
			assert.False(t, ex.Transactions[3].Balance.Valid)
		})
	}
}

func TestDBS_ThreeCellRows(t *testing.T) {
	rows := []extractor.Row{
		{"05 Jan 2024", "NETS Purchase", "-8.00"},
		{"06 Jan 2024", "Service fee", "(1.00)"},
		{"07 Jan 2024", "Refund", "5.00"},
	}

	ex := NewDBS().ExtractTransactions(rows, statement.AccountInfo{})
	require.Len(t, ex.Transactions, 3)
	assertAmount(t, "-8", ex.Transactions[0].Amount)
	assertAmount(t, "-1", ex.Transactions[1].Amount)
	assertAmount(t, "5", ex.Transactions[2].Amount)
	for _, tx := range ex.Transactions {
		assert.False(t, tx.Balance.Valid)
	}
}

func TestExtractTransactions_DropsAndContinuations(t *testing.T) {
	rows := []extractor.Row{
		{"01 Jan 2024", "Grab"},                               // short
		{"not a date", "Something", "1.00", "", ""},           // bad date
		{"02 Jan 2024", "", "1.00", "", ""},                   // empty description
		{"03 Jan 2024", "FAST Payment to", "20.00", "", "80"}, // kept
		{"", "John Tan", "", "", ""},                          // wrapped description
		{"04 Jan 2024", "Refund", "", "", ""},                 // kept, no amount
	}

	ex := NewSCB().ExtractTransactions(rows, statement.AccountInfo{})
	require.Len(t, ex.Transactions, 2)
	assert.Equal(t, "FAST Payment to John Tan", ex.Transactions[0].Description)
	assert.True(t, ex.Transactions[1].Amount.IsZero())

	d := ex.Diagnostics
	assert.Equal(t, 6, d.Rows)
	assert.Equal(t, 1, d.Continuations)
	assert.Equal(t, 1, d.Dropped[DropShortRow])
	assert.Equal(t, 1, d.Dropped[DropBadDate])
	assert.Equal(t, 1, d.Dropped[DropEmptyDescription])
	assert.Equal(t, 3, d.TotalDropped())
	assert.Equal(t, []DropReason{DropBadDate, DropEmptyDescription, DropShortRow}, d.Reasons())
}

func TestExtractTransactions_LeadingContinuationIsDropped(t *testing.T) {
	ex := NewSCB().ExtractTransactions([]extractor.Row{{"", "orphan text", ""}}, statement.AccountInfo{})
	assert.Empty(t, ex.Transactions)
	assert.Equal(t, 1, ex.Diagnostics.Dropped[DropBadDate])
}

func TestExtractTransactions_TrimmedContinuationRow(t *testing.T) {
	rows := []extractor.Row{
		{"05 Jan 2024", "POS 1234 SINGAPORE", "15.90", "", "984.10"},
		{"", "NETFLIX.COM"},
		{"", "REF 889201"},
	}

	ex := NewDBS().ExtractTransactions(rows, statement.AccountInfo{})
	require.Len(t, ex.Transactions, 1)
	assert.Equal(t, "POS 1234 SINGAPORE NETFLIX.COM REF 889201", ex.Transactions[0].Description)
	assert.Equal(t, 2, ex.Diagnostics.Continuations)
	assert.Zero(t, ex.Diagnostics.TotalDropped())

	lone := NewDBS().ExtractTransactions([]extractor.Row{{"", "orphan"}}, statement.AccountInfo{})
	assert.Empty(t, lone.Transactions)
	assert.Equal(t, 1, lone.Diagnostics.Dropped[DropShortRow])
}

func TestExtractTransactions_YearlessDatesUsePeriod(t *testing.T) {
	end := date(2024, 1, 31)
	info := statement.AccountInfo{PeriodEnd: &end}
	rows := []extractor.Row{
		{"28 Dec", "Coffee", "4.50", "", ""},
		{"03 Jan", "Lunch", "12.00", "", ""},
	}

	ex := NewOCBC().ExtractTransactions(rows, info)
	require.Len(t, ex.Transactions, 2)
	assert.Equal(t, date(2023, 12, 28), ex.Transactions[0].Date)
	assert.Equal(t, date(2024, 1, 3), ex.Transactions[1].Date)
}

func TestExtractAccountInfo(t *testing.T) {
	tests := []struct {
		name    string
		adapter Adapter
		text    string
		account string
		start   time.Time
		end     time.Time
	}{
		{
			name:    "dbs",
			adapter: NewDBS(),
			text:    "DBS Bank Ltd\nAccount No. 123-456789-0\nStatement Period: 01 Jan 2024 to 31 Jan 2024",
			account: "1234567890",
			start:   date(2024, 1, 1),
			end:     date(2024, 1, 31),
		},
		{
			name:    "gxs slash dates",
			adapter: NewGXS(),
			text:    "GXS Bank\nAccount Number: 888812345678\nPeriod: 01/02/2024 - 29/02/2024",
			account: "888812345678",
			start:   date(2024, 2, 1),
			end:     date(2024, 2, 29),
		},
		{
			name:    "scb",
			adapter: NewSCB(),
			text:    "Standard Chartered\nAccount Number: 01-234567-89\nFrom 01 March 2024 To 31 March 2024",
			account: "0123456789",
			start:   date(2024, 3, 1),
			end:     date(2024, 3, 31),
		},
		{
			name:    "hsbc a/c label",
			adapter: NewHSBC(),
			text:    "HSBC\nA/C No: 052-123456-001\nStatement Period 01 Apr 2024 to 30 Apr 2024",
			account: "052123456001",
			start:   date(2024, 4, 1),
			end:     date(2024, 4, 30),
		},
		{
			name:    "citibank card",
			adapter: NewCitibank(),
			text:    "Citibank\nCard Number 4111 2222 3333 4444\nBilling Period: 05 May 2024 to 04 Jun 2024",
			account: "4111222233334444",
			start:   date(2024, 5, 5),
			end:     date(2024, 6, 4),
		},
		{
			name:    "trust",
			adapter: NewTrust(),
			text:    "Trust Bank\nAccount No 1234 5678 9012\nStatement Period 01 Jun 2024 - 30 Jun 2024",
			account: "123456789012",
			start:   date(2024, 6, 1),
			end:     date(2024, 6, 30),
		},
		{
			name:    "ocbc",
			adapter: NewOCBC(),
			text:    "OCBC Bank\nAccount Number 501-123456-001\nPeriod 01 Jul 2024 to 31 Jul 2024",
			account: "501123456001",
			start:   date(2024, 7, 1),
			end:     date(2024, 7, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.adapter.ExtractAccountInfo(tt.text)
			require.NotNil(t, info.AccountNumber)
			assert.Equal(t, tt.account, *info.AccountNumber)
			require.True(t, info.HasPeriod())
			assert.Equal(t, tt.start, *info.PeriodStart)
			assert.Equal(t, tt.end, *info.PeriodEnd)
		})
	}
}

func TestExtractAccountInfo_Missing(t *testing.T) {
	for _, a := range DefaultRegistry().Adapters() {
		t.Run(a.ID(), func(t *testing.T) {
			info := a.ExtractAccountInfo("no identifying details here")
			assert.Nil(t, info.AccountNumber)
			assert.Nil(t, info.PeriodStart)
			assert.Nil(t, info.PeriodEnd)
		})
	}
}
