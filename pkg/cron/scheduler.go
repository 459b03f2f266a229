// Package cron provides the scheduled inbox sweep using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/repository"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/service"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/metrics"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/storage"
)

// sweepTimeout bounds a single pass over the inbox.
const sweepTimeout = 30 * time.Minute

// StatementProcessor is the part of the statement service the sweep needs.
type StatementProcessor interface {
	Process(ctx context.Context, path string, opts ...service.ProcessOption) (*service.Outcome, error)
}

// SweepStats summarizes one pass over the inbox.
type SweepStats struct {
	Pending    int
	Processed  int
	Duplicates int
	Failed     int
}

// Scheduler periodically drains the statement inbox.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	inbox     storage.Inbox
	processor StatementProcessor
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu sync.Mutex // one sweep at a time
}

// NewScheduler creates a sweep scheduler. schedule uses the standard
// 5-field format or a descriptor such as "@every 1m".
func NewScheduler(schedule string, inbox storage.Inbox, processor StatementProcessor, logger *slog.Logger) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:      c,
		schedule:  schedule,
		inbox:     inbox,
		processor: processor,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		logger:    logger,
	}
}

// WithRateLimit caps how many documents per second the sweep hands to the
// processor. Non-positive values remove the cap.
func (s *Scheduler) WithRateLimit(perSecond float64) *Scheduler {
	if perSecond <= 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 1)
		return s
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	return s
}

// WithMetrics reports the pending inbox size.
func (s *Scheduler) WithMetrics(m *metrics.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Start registers the sweep and begins scheduling.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepJob)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers a sweep in the background.
func (s *Scheduler) RunNow() {
	go s.sweepJob()
}

func (s *Scheduler) sweepJob() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("inbox sweep failed", slog.Any("error", err))
	}
}

// Sweep processes every pending document once. Recognized statements and
// duplicates are archived as processed; unrecognized documents and
// document errors are archived as failed. Only listing errors and context
// cancellation are returned.
func (s *Scheduler) Sweep(ctx context.Context) (SweepStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats SweepStats
	pending, err := s.inbox.Pending(ctx)
	if err != nil {
		return stats, err
	}
	stats.Pending = len(pending)
	s.metrics.SetInboxPending(len(pending))
	if len(pending) == 0 {
		return stats, nil
	}

	s.logger.Info("starting inbox sweep", slog.Int("pending", len(pending)))

	for i, f := range pending {
		if err := s.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		outcome, err := s.processor.Process(ctx, f.Path)
		if err == nil {
			err = outcome.Err()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}

		switch {
		case err == nil:
			_, err = s.inbox.MarkProcessed(ctx, f)
			stats.Processed++
		case errors.Is(err, repository.ErrDuplicateStatement):
			s.logger.Info("statement already imported", slog.String("file", f.Name))
			_, err = s.inbox.MarkProcessed(ctx, f)
			stats.Duplicates++
		default:
			s.logger.Warn("statement not imported",
				slog.String("file", f.Name),
				slog.Any("error", err),
			)
			_, err = s.inbox.MarkFailed(ctx, f, err)
			stats.Failed++
		}
		if err != nil {
			s.logger.Error("failed to archive document", slog.String("file", f.Name), slog.Any("error", err))
		}
		s.metrics.SetInboxPending(len(pending) - i - 1)
	}

	s.logger.Info("inbox sweep completed",
		slog.Int("processed", stats.Processed),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("failed", stats.Failed),
	)
	return stats, nil
}
