package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/config"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) dependencies(ctx context.Context) (*Dependencies, error) {
	return InitDependencies(ctx, a.cfg, a.logger)
}

// newRootCommand creates the root CLI command with all subcommands registered.
func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "extractor",
		Short: "Extract and categorize transactions from bank statements",
		Long: `Extract transactions from Singapore bank statements (PDF or XLSX),
normalize dates and amounts, and assign spending categories.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Log.NewLogger()
			slog.SetDefault(a.logger)
			return nil
		},
	}

	rootCmd.AddCommand(
		newParseCommand(a),
		newDetectCommand(a),
		newDebugCommand(a),
		newBanksCommand(a),
		newWatchCommand(a),
		newMigrateCommand(a),
	)

	return rootCmd
}
