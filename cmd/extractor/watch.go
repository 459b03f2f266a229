package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/cron"
)

const shutdownTimeout = 10 * time.Second

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process statements dropped into the inbox directory",
		Long: `Sweep INBOX_DIR on SWEEP_SCHEDULE, process every pending PDF or XLSX
statement and move it to processed/ or failed/. Prometheus metrics are
served on METRICS_ADDR when METRICS_ENABLED is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := a.dependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			if err := deps.InitInbox(); err != nil {
				return err
			}

			var srv *http.Server
			if a.cfg.Observability.MetricsEnabled {
				mux := http.NewServeMux()
				mux.Handle("/metrics", deps.Metrics.Handler())
				srv = &http.Server{
					Addr:              a.cfg.Observability.MetricsAddr,
					Handler:           mux,
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					a.logger.Info("metrics server listening", slog.String("addr", srv.Addr))
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("metrics server failed", slog.Any("error", err))
						stop()
					}
				}()
			}

			scheduler := cron.NewScheduler(a.cfg.Inbox.SweepSchedule, deps.Inbox, deps.StatementService, a.logger).
				WithRateLimit(a.cfg.Inbox.IntakeRate).
				WithMetrics(deps.Metrics)
			if err := scheduler.Start(); err != nil {
				return fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", a.cfg.Inbox.SweepSchedule, err)
			}
			scheduler.RunNow()

			a.logger.Info("watching inbox", slog.String("dir", deps.Inbox.Path()))
			<-ctx.Done()

			// Wait for a running sweep to finish.
			<-scheduler.Stop().Done()

			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Warn("metrics server shutdown", slog.Any("error", err))
				}
			}

			a.logger.Info("watch stopped")
			return nil
		},
	}
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Database.PersistenceEnabled() {
				return errors.New("DATABASE_URL is not set")
			}

			database, err := connectDatabase(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(cmd.Context()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
