// Package export writes categorized statement transactions to CSV and XLSX.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/categorization"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/money"
)

const dateLayout = "2006-01-02"

// Row is the flat export shape of one transaction.
type Row struct {
	Date            string `csv:"date"`
	Description     string `csv:"description"`
	Amount          string `csv:"amount"`
	Balance         string `csv:"balance"`
	Category        string `csv:"category"`
	CategoryName    string `csv:"category_name"`
	Confidence      string `csv:"confidence"`
	AutoCategorized bool   `csv:"auto_categorized"`
}

// Rows flattens transactions. Amounts keep two decimals; a missing
// balance is an empty string.
func Rows(txs []statement.CategorizedTransaction) []*Row {
	rows := make([]*Row, len(txs))
	for i, tx := range txs {
		balance := ""
		if tx.Balance.Valid {
			balance = tx.Balance.Decimal.StringFixed(2)
		}
		rows[i] = &Row{
			Date:            tx.Date.Format(dateLayout),
			Description:     tx.Description,
			Amount:          tx.Amount.StringFixed(2),
			Balance:         balance,
			Category:        string(tx.Category),
			CategoryName:    categorization.DisplayName(tx.Category),
			Confidence:      strconv.FormatFloat(tx.Confidence, 'f', 2, 64),
			AutoCategorized: tx.AutoCategorized,
		}
	}
	return rows
}

// WriteCSV writes a header line and one line per transaction.
func WriteCSV(w io.Writer, txs []statement.CategorizedTransaction) error {
	if err := gocsv.Marshal(Rows(txs), w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

var xlsxHeaders = []interface{}{
	"Date", "Description", "Amount", "Balance", "Category", "Confidence", "Auto",
}

// WriteXLSX writes a workbook with a Transactions sheet and a Summary sheet
// holding credit, debit and net totals in currency.
func WriteXLSX(path string, txs []statement.CategorizedTransaction, currency string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(transactionsSheet, "A1", &xlsxHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	amounts := make([]decimal.Decimal, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount

		var balance interface{}
		if tx.Balance.Valid {
			balance = tx.Balance.Decimal.InexactFloat64()
		}
		row := []interface{}{
			tx.Date.Format(dateLayout),
			tx.Description,
			tx.Amount.InexactFloat64(),
			balance,
			categorization.DisplayName(tx.Category),
			tx.Confidence,
			tx.AutoCategorized,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if len(txs) > 0 {
		last := fmt.Sprintf("D%d", len(txs)+1)
		if err := f.SetCellStyle(transactionsSheet, "C2", last, amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	if err := writeSummary(f, money.Summarize(amounts, currency)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s money.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Currency", s.Net.Currency()},
		{"Credits", s.Credits.Display(), s.CreditCount},
		{"Debits", s.Debits.Display(), s.DebitCount},
		{"Net", s.Net.Display()},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
