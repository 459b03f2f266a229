// Package e2etest provides end-to-end tests for the statement pipeline:
// workbook on disk, detection, parsing, categorization and export.
package e2etest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/categorization"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/export"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/parser"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/service"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/cron"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/metrics"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/money"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/storage"
)

const sheetDate = "02 Jan 2006"

var march = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func saveWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

// writeDBS lays lines out as Date | Description | Withdrawal | Deposit | Balance.
func writeDBS(t *testing.T, path string, lines []money.StatementLine) {
	rows := [][]interface{}{
		{"DBS Bank Ltd"},
		{"Account No. 012-345678-9"},
		{"Date", "Description", "Withdrawal", "Deposit", "Balance"},
	}
	balance := decimal.NewFromInt(10000)
	for _, l := range lines {
		amount := l.Amount.ToDecimal()
		balance = balance.Add(amount)
		withdrawal, deposit := "", ""
		if amount.IsNegative() {
			withdrawal = amount.Neg().StringFixed(2)
		} else {
			deposit = amount.StringFixed(2)
		}
		rows = append(rows, []interface{}{l.Date.Format(sheetDate), l.Description, withdrawal, deposit, balance.StringFixed(2)})
	}
	saveWorkbook(t, path, rows)
}

// writeGXS lays lines out as Date | Description | Amount | Balance.
func writeGXS(t *testing.T, path string, lines []money.StatementLine) {
	rows := [][]interface{}{
		{"GXS Bank"},
		{"Date", "Description", "Amount", "Balance"},
	}
	balance := decimal.NewFromInt(5000)
	for _, l := range lines {
		amount := l.Amount.ToDecimal()
		balance = balance.Add(amount)
		rows = append(rows, []interface{}{l.Date.Format(sheetDate), l.Description, amount.StringFixed(2), balance.StringFixed(2)})
	}
	saveWorkbook(t, path, rows)
}

func total(lines []money.StatementLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount.ToDecimal())
	}
	return sum
}

func newService() *service.StatementService {
	return service.NewStatementService(parser.DefaultRegistry(), categorization.Default(), logger())
}

func TestStatementPipeline(t *testing.T) {
	dir := t.TempDir()
	gen := money.NewTestDataGeneratorWithSeed(7)

	dbsLines := gen.Lines(money.SGD, march, 30)
	gxsLines := gen.Lines(money.SGD, march, 25)

	dbsPath := filepath.Join(dir, "dbs_march.xlsx")
	gxsPath := filepath.Join(dir, "gxs_march.xlsx")
	writeDBS(t, dbsPath, dbsLines)
	writeGXS(t, gxsPath, gxsLines)

	m := metrics.New()
	svc := newService().WithMetrics(m).WithWorkers(2)

	results, err := svc.ProcessBatch(context.Background(), []string{dbsPath, gxsPath})
	require.NoError(t, err)
	require.Len(t, results, 2)

	cases := []struct {
		name  string
		bank  string
		lines []money.StatementLine
	}{
		{"DBS", "DBS", dbsLines},
		{"GXS", "GXS", gxsLines},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := results[i]
			require.NoError(t, r.Err)
			require.Equal(t, service.OutcomeRecognized, r.Outcome.Status)
			assert.Equal(t, tc.bank, r.Outcome.Result.BankName)

			txs := r.Outcome.Categorized
			require.Len(t, txs, len(tc.lines))

			sum := decimal.Zero
			for j, tx := range txs {
				want := tc.lines[j]
				assert.Equal(t, want.Description, tx.Description)
				assert.True(t, want.Date.Equal(tx.Date), "row %d date %s", j, tx.Date)
				assert.True(t, want.Amount.ToDecimal().Equal(tx.Amount), "row %d amount %s", j, tx.Amount)
				assert.True(t, tx.Balance.Valid)
				assert.True(t, tx.AutoCategorized)
				assert.NotEmpty(t, tx.Category)
				switch want.Description {
				case "Salary ACME Pte Ltd":
					assert.Equal(t, categorization.Income, tx.Category)
				case "Grab Ride":
					assert.Equal(t, categorization.Transport, tx.Category)
				case "Netflix.com":
					assert.Equal(t, categorization.Entertainment, tx.Category)
				}
				sum = sum.Add(tx.Amount)
			}
			assert.True(t, total(tc.lines).Equal(sum))

			var buf bytes.Buffer
			require.NoError(t, export.WriteCSV(&buf, txs))
			var back []*export.Row
			require.NoError(t, gocsv.UnmarshalBytes(buf.Bytes(), &back))
			require.Len(t, back, len(txs))
			assert.Equal(t, txs[0].Amount.StringFixed(2), back[0].Amount)
		})
	}

	doc := results[0].Outcome.Result
	require.NotNil(t, doc.AccountInfo.AccountNumber)
	assert.Equal(t, "0123456789", *doc.AccountInfo.AccountNumber)

	out := filepath.Join(dir, "dbs_march_out.xlsx")
	require.NoError(t, export.WriteXLSX(out, results[0].Outcome.Categorized, money.SGD))
	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	net, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, money.NewFromDecimal(total(dbsLines), money.SGD).Display(), net)
}

func TestInboxSweep(t *testing.T) {
	dir := t.TempDir()
	inbox, err := storage.NewLocalInbox(dir, []string{".pdf", ".xlsx"})
	require.NoError(t, err)

	gen := money.NewTestDataGeneratorWithSeed(11)
	writeGXS(t, filepath.Join(dir, "gxs.xlsx"), gen.Lines(money.SGD, march, 5))
	saveWorkbook(t, filepath.Join(dir, "monzo.xlsx"), [][]interface{}{{"Monzo Bank"}, {"01 Mar 2024", "Coffee", "-4.50"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0644))

	svc := newService().WithOptions(extractor.DefaultOptions())
	s := cron.NewScheduler("@every 1m", inbox, svc, logger())

	stats, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cron.SweepStats{Pending: 3, Processed: 1, Failed: 2}, stats)

	assert.FileExists(t, filepath.Join(dir, "processed", "gxs.xlsx"))
	assert.FileExists(t, filepath.Join(dir, "failed", "monzo.xlsx.json"))
	assert.FileExists(t, filepath.Join(dir, "failed", "broken.pdf.json"))
}
