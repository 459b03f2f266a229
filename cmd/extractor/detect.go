package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/parser"
)

func newDetectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Report which bank produced each statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := parser.DefaultRegistry()
			detector := parser.NewDetector(registry).WithPages(a.cfg.Processing.DetectPages)
			opts := extractor.Options{
				MaxSize:           a.cfg.Inbox.MaxUploadSize,
				AllowedExtensions: a.cfg.Inbox.AllowedExtensions,
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				name := filepath.Base(path)
				doc, err := extractor.Open(cmd.Context(), path, opts)
				if err != nil {
					fmt.Fprintf(out, "%s\terror: %v\n", name, err)
					failed++
					continue
				}
				adapter, ok := detector.DetectDocument(doc)
				if !ok {
					fmt.Fprintf(out, "%s\tunrecognized\n", name)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", name, adapter.ID())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents not detected. %s",
					failed, len(args), strings.TrimPrefix(registry.SupportedBanksMessage(), "Unable to detect bank. "))
			}
			return nil
		},
	}
}

func newBanksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, ad := range parser.DefaultRegistry().Adapters() {
				fmt.Fprintf(out, "%-9s %s\n", ad.ID(), strings.Join(ad.Signatures(), " | "))
			}
			return nil
		},
	}
}
