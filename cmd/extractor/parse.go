package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/categorization"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/export"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/service"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/money"
)

const dateLayout = "2006-01-02"

func newParseCommand(a *app) *cobra.Command {
	var (
		bank    string
		csvPath string
		xlsx    string
	)

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse statements and print categorized transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (csvPath != "" || xlsx != "") && len(args) > 1 {
				return errors.New("--csv and --xlsx need exactly one input file")
			}

			deps, err := a.dependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			var opts []service.ProcessOption
			if bank != "" {
				opts = append(opts, service.WithBank(bank))
			}

			results, err := deps.StatementService.ProcessBatch(cmd.Context(), args, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			currency := a.cfg.Processing.DefaultCurrency
			var failed int
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if r.Err != nil {
					fmt.Fprintf(out, "%s: %v\n", filepath.Base(r.Path), r.Err)
					failed++
					continue
				}
				if r.Outcome.Status == service.OutcomeUnrecognized {
					fmt.Fprintf(out, "%s: %s\n", r.Outcome.Document, deps.Registry.SupportedBanksMessage())
					failed++
					continue
				}
				printOutcome(out, r.Outcome, currency)
			}

			if failed == 0 && len(results) == 1 {
				txs := results[0].Outcome.Categorized
				if csvPath != "" {
					if err := writeCSVFile(csvPath, txs); err != nil {
						return err
					}
					fmt.Fprintf(out, "\nwrote %s\n", csvPath)
				}
				if xlsx != "" {
					if err := export.WriteXLSX(xlsx, txs, currency); err != nil {
						return err
					}
					fmt.Fprintf(out, "\nwrote %s\n", xlsx)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d statements not parsed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "skip detection and parse as this bank (e.g. DBS)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write transactions to a CSV file")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write transactions and totals to an XLSX workbook")

	return cmd
}

func printOutcome(w io.Writer, o *service.Outcome, currency string) {
	r := o.Result
	fmt.Fprintf(w, "%s: %s\n", o.Document, r.BankName)
	if r.AccountInfo.AccountNumber != nil {
		fmt.Fprintf(w, "Account: %s\n", *r.AccountInfo.AccountNumber)
	}
	if r.AccountInfo.HasPeriod() {
		fmt.Fprintf(w, "Period:  %s to %s\n",
			r.AccountInfo.PeriodStart.Format(dateLayout), r.AccountInfo.PeriodEnd.Format(dateLayout))
	}
	fmt.Fprintln(w)

	printTransactions(w, o.Categorized)

	amounts := make([]decimal.Decimal, len(o.Categorized))
	for i, tx := range o.Categorized {
		amounts[i] = tx.Amount
	}
	s := money.Summarize(amounts, currency)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Transactions: %d", len(o.Categorized))
	if n := o.Diagnostics.TotalDropped(); n > 0 {
		fmt.Fprintf(w, " (%d rows skipped)", n)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Credits: %s (%d)\n", s.Credits.Display(), s.CreditCount)
	fmt.Fprintf(w, "Debits:  %s (%d)\n", s.Debits.Abs().Display(), s.DebitCount)
	fmt.Fprintf(w, "Net:     %s\n", s.Net.Display())
}

func printTransactions(w io.Writer, txs []statement.CategorizedTransaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tDescription\tAmount\tBalance\tCategory\t")
	for _, tx := range txs {
		balance := ""
		if tx.Balance.Valid {
			balance = tx.Balance.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			tx.Date.Format(dateLayout),
			tx.Description,
			tx.Amount.StringFixed(2),
			balance,
			categorization.DisplayName(tx.Category),
		)
	}
	tw.Flush()
}

func writeCSVFile(path string, txs []statement.CategorizedTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, txs); err != nil {
		return err
	}
	return f.Close()
}
