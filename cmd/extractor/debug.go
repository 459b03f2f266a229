package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/parser"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/sniffer"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

const (
	previewChars    = 500
	previewTxs      = 3
	previewRows     = 5
	previewRowWidth = 120
)

func newDebugCommand(a *app) *cobra.Command {
	var bank string

	cmd := &cobra.Command{
		Use:   "debug <file>",
		Short: "Show what the extractor sees in a statement",
		Long: `Print a preview of the first page, the signature check of every
supported bank and, when a bank is detected, the account information and
first transactions. Unrecognized documents get a table layout probe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.dependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			doc, err := extractor.Open(cmd.Context(), args[0], extractor.Options{
				MaxSize:           a.cfg.Inbox.MaxUploadSize,
				AllowedExtensions: a.cfg.Inbox.AllowedExtensions,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Document: %s (%d pages)\n\n", doc.Name, len(doc.Pages))
			fmt.Fprintln(out, "--- first page ---")
			fmt.Fprintln(out, preview(doc.Text(1), previewChars))
			fmt.Fprintln(out)

			pages := a.cfg.Processing.DetectPages
			text := doc.Text(pages)
			fmt.Fprintf(out, "--- signatures (first %d pages) ---\n", pages)
			for _, ad := range deps.Registry.Adapters() {
				mark := "no"
				if ad.Detect(text) {
					mark = "yes"
				}
				fmt.Fprintf(out, "%-9s %s\n", ad.ID(), mark)
			}
			fmt.Fprintln(out)

			var adapter parser.Adapter
			if bank != "" {
				adapter, err = deps.Registry.Get(bank)
				if err != nil {
					return err
				}
			} else {
				var ok bool
				adapter, ok = parser.NewDetector(deps.Registry).WithPages(pages).DetectDocument(doc)
				if !ok {
					fmt.Fprintln(out, deps.Registry.SupportedBanksMessage())
					fmt.Fprintln(out)
					printLayout(out, doc.Rows())
					return nil
				}
			}

			parsed := parser.ParseAs(doc, adapter)
			printParsed(out, parsed, deps.Categorizer.Explain)
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "parse as this bank instead of detecting")
	return cmd
}

type explainFunc func(description string, amount decimal.Decimal) (statement.CategoryAssignment, string)

func printParsed(w io.Writer, p *parser.ParseOutput, explain explainFunc) {
	r := p.Result
	fmt.Fprintf(w, "Detected: %s\n", r.BankName)

	info := r.AccountInfo
	account := "(not found)"
	if info.AccountNumber != nil {
		account = *info.AccountNumber
	}
	fmt.Fprintf(w, "Account:  %s\n", account)
	if info.PeriodStart != nil {
		fmt.Fprintf(w, "From:     %s\n", info.PeriodStart.Format(dateLayout))
	}
	if info.PeriodEnd != nil {
		fmt.Fprintf(w, "To:       %s\n", info.PeriodEnd.Format(dateLayout))
	}

	d := p.Diagnostics
	fmt.Fprintf(w, "Rows:     %d seen, %d transactions, %d continuations\n", d.Rows, len(r.Transactions), d.Continuations)
	for _, reason := range d.Reasons() {
		fmt.Fprintf(w, "  dropped %-18s %d\n", reason, d.Dropped[reason])
	}
	fmt.Fprintln(w)

	n := min(previewTxs, len(r.Transactions))
	fmt.Fprintf(w, "--- first %d transactions ---\n", n)
	for _, tx := range r.Transactions[:n] {
		assignment, pattern := explain(tx.Description, tx.Amount)
		if pattern == "" {
			pattern = "fallback"
		}
		fmt.Fprintf(w, "%s  %12s  %s\n", tx.Date.Format(dateLayout), tx.Amount.StringFixed(2), tx.Description)
		fmt.Fprintf(w, "            %s %.2f (%s)\n", assignment.Category, assignment.Confidence, pattern)
	}
}

func printLayout(w io.Writer, rows []extractor.Row) {
	n := min(previewRows, len(rows))
	fmt.Fprintf(w, "--- first %d table rows ---\n", n)
	for _, row := range rows[:n] {
		fmt.Fprintln(w, preview(strings.Join(row, " | "), previewRowWidth))
	}
	fmt.Fprintln(w)

	layout, err := sniffer.Sniff(rows)
	if err != nil {
		fmt.Fprintf(w, "layout: %v\n", err)
		return
	}

	c := layout.Columns
	fmt.Fprintf(w, "Header row:  %d %v\n", layout.HeaderIndex, layout.Headers)
	fmt.Fprintf(w, "Fingerprint: %s\n", layout.Fingerprint)
	fmt.Fprintf(w, "Columns:     date=%d description=%d amount=%d withdrawal=%d deposit=%d balance=%d\n",
		c.DateCol, c.DescCol, c.AmountCol, c.DebitCol, c.CreditCol, c.BalanceCol)
	fmt.Fprintf(w, "Dialect:     decimal=%q thousands=%q dates=%s (confidence %.2f)\n",
		layout.Dialect.DecimalSeparator, layout.Dialect.ThousandsSeparator,
		layout.Dialect.DateFormat, layout.Dialect.Confidence)
}

// preview cuts s to at most n runes.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
