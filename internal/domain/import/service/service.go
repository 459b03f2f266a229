// Package service provides the statement import orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/parser"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/repository"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/sniffer"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/metrics"
)

// ErrUnrecognizedFormat is returned by callers that need an error value for
// a document no adapter claimed. Process itself reports that case through
// Outcome.Status.
var ErrUnrecognizedFormat = errors.New("unrecognized statement format")

// OutcomeStatus is the high level result of processing one document.
type OutcomeStatus string

const (
	OutcomeRecognized   OutcomeStatus = "recognized"
	OutcomeUnrecognized OutcomeStatus = "unrecognized"
)

// Outcome is the result of processing one document.
type Outcome struct {
	Document    string
	Status      OutcomeStatus
	Result      *statement.ParseResult
	Categorized []statement.CategorizedTransaction
	Diagnostics parser.Diagnostics
	// Layout is a best-effort table probe of an unrecognized document.
	Layout *sniffer.Layout
	// StatementID is set when the statement was persisted.
	StatementID uuid.UUID
	Duration    time.Duration
}

// Err converts an unrecognized outcome into ErrUnrecognizedFormat.
func (o *Outcome) Err() error {
	if o == nil || o.Status == OutcomeUnrecognized {
		return ErrUnrecognizedFormat
	}
	return nil
}

// BatchResult pairs a path with its outcome or error.
type BatchResult struct {
	Path    string
	Outcome *Outcome
	Err     error
}

// ProcessOption tweaks a single Process call.
type ProcessOption func(*processConfig)

type processConfig struct {
	bank string
}

// WithBank pins the vendor and skips signature detection.
func WithBank(id string) ProcessOption {
	return func(c *processConfig) { c.bank = id }
}

const tracerName = "github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/service"

// StatementService orchestrates extraction, vendor detection, parsing,
// categorization and optional persistence.
type StatementService struct {
	registry    *parser.Registry
	detector    *parser.Detector
	categorizer statement.Categorizer
	repo        repository.StatementRepository // Optional: nil if persistence not configured
	metrics     *metrics.Metrics               // Optional
	opts        extractor.Options
	workers     int
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewStatementService creates a new statement service.
func NewStatementService(registry *parser.Registry, categorizer statement.Categorizer, logger *slog.Logger) *StatementService {
	return &StatementService{
		registry:    registry,
		detector:    parser.NewDetector(registry),
		categorizer: categorizer,
		opts:        extractor.DefaultOptions(),
		workers:     4,
		tracer:      otel.Tracer(tracerName),
		logger:      logger,
	}
}

// WithRepository enables persistence of recognized statements.
func (s *StatementService) WithRepository(repo repository.StatementRepository) *StatementService {
	s.repo = repo
	return s
}

// WithMetrics enables Prometheus recording.
func (s *StatementService) WithMetrics(m *metrics.Metrics) *StatementService {
	s.metrics = m
	return s
}

// WithOptions sets the document size and extension limits.
func (s *StatementService) WithOptions(opts extractor.Options) *StatementService {
	s.opts = opts
	return s
}

// WithDetectPages sets how many leading pages are scanned for signatures.
func (s *StatementService) WithDetectPages(n int) *StatementService {
	s.detector.WithPages(n)
	return s
}

// WithWorkers bounds ProcessBatch concurrency.
func (s *StatementService) WithWorkers(n int) *StatementService {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Registry exposes the vendor registry, e.g. for the supported banks list.
func (s *StatementService) Registry() *parser.Registry {
	return s.registry
}

// Process opens the file at path and runs the full pipeline on it.
//
// Document-level failures are returned as errors wrapping
// extractor.ErrOpenDocument. A document no adapter recognizes is not an
// error: the outcome status is OutcomeUnrecognized.
func (s *StatementService) Process(ctx context.Context, path string, opts ...ProcessOption) (*Outcome, error) {
	name := filepath.Base(path)
	ctx, span := s.tracer.Start(ctx, "StatementService.Process",
		trace.WithAttributes(attribute.String("statement.document", name)))
	defer span.End()

	start := time.Now()

	var checksum string
	if s.repo != nil {
		sum, err := fileChecksum(path)
		if err != nil {
			return nil, s.fail(span, name, start, err)
		}
		checksum = sum

		existing, err := s.repo.FindByChecksum(ctx, checksum)
		if err != nil {
			return nil, s.fail(span, name, start, err)
		}
		if existing != nil && existing.Status == statement.StatusCompleted {
			return nil, s.fail(span, name, start,
				fmt.Errorf("%w: %s was imported as %s", repository.ErrDuplicateStatement, name, existing.ID))
		}
	}

	doc, err := extractor.Open(ctx, path, s.opts)
	if err != nil {
		return nil, s.fail(span, name, start, err)
	}

	out, err := s.process(ctx, doc, opts...)
	if err != nil {
		return nil, s.fail(span, name, start, err)
	}

	if s.repo != nil {
		if err := s.persist(ctx, out, name, checksum); err != nil {
			return nil, s.fail(span, name, start, err)
		}
	}

	out.Duration = time.Since(start)
	s.metrics.ObserveDocument(bankOf(out), string(out.Status), out.Duration.Seconds())
	span.SetAttributes(
		attribute.String("statement.status", string(out.Status)),
		attribute.String("statement.bank", bankOf(out)),
		attribute.Int("statement.transactions", len(out.Categorized)),
	)
	return out, nil
}

// ProcessDocument runs detection, parsing and categorization on an already
// extracted document. Nothing is persisted.
func (s *StatementService) ProcessDocument(ctx context.Context, doc *extractor.Document, opts ...ProcessOption) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "StatementService.ProcessDocument")
	defer span.End()

	start := time.Now()
	out, err := s.process(ctx, doc, opts...)
	if err != nil {
		return nil, s.fail(span, docName(doc), start, err)
	}
	out.Duration = time.Since(start)
	s.metrics.ObserveDocument(bankOf(out), string(out.Status), out.Duration.Seconds())
	return out, nil
}

func (s *StatementService) process(ctx context.Context, doc *extractor.Document, opts ...ProcessOption) (*Outcome, error) {
	var cfg processConfig
	for _, o := range opts {
		o(&cfg)
	}

	outcome := &Outcome{Document: docName(doc), Status: OutcomeUnrecognized}

	var parsed *parser.ParseOutput
	if cfg.bank != "" {
		a, err := s.registry.Get(cfg.bank)
		if err != nil {
			return nil, err
		}
		parsed = parser.ParseAs(doc, a)
	} else {
		a, ok := s.detector.DetectDocument(doc)
		if !ok {
			s.logger.InfoContext(ctx, "statement not recognized",
				slog.String("document", outcome.Document),
				slog.String("hint", s.registry.SupportedBanksMessage()),
			)
			s.probe(ctx, doc, outcome)
			return outcome, nil
		}
		var recognized bool
		parsed, recognized = parser.Parse(doc, a)
		if !recognized {
			return outcome, nil
		}
	}

	outcome.Status = OutcomeRecognized
	outcome.Result = parsed.Result
	outcome.Diagnostics = parsed.Diagnostics
	outcome.Categorized = statement.Annotate(parsed.Result, s.categorizer)

	s.record(ctx, outcome)
	return outcome, nil
}

// probe sniffs the table layout of an unrecognized document so the logs
// carry enough to write a new adapter.
func (s *StatementService) probe(ctx context.Context, doc *extractor.Document, o *Outcome) {
	layout, err := sniffer.Sniff(doc.Rows())
	if err != nil {
		s.logger.DebugContext(ctx, "no table layout found",
			slog.String("document", o.Document), slog.Any("error", err))
		return
	}
	o.Layout = layout
	s.logger.DebugContext(ctx, "table layout probed",
		slog.String("document", o.Document),
		slog.String("fingerprint", layout.Fingerprint),
		slog.Any("headers", layout.Headers),
	)
}

// record logs and counts a recognized outcome.
func (s *StatementService) record(ctx context.Context, o *Outcome) {
	bank := o.Result.BankName
	diag := o.Diagnostics

	dropped := make(map[string]int, len(diag.Dropped))
	for _, reason := range diag.Reasons() {
		n := diag.Dropped[reason]
		dropped[string(reason)] = n
		s.logger.DebugContext(ctx, "rows dropped",
			slog.String("document", o.Document),
			slog.String("reason", string(reason)),
			slog.Int("count", n),
		)
	}
	s.metrics.ObserveTransactions(bank, len(o.Categorized), dropped)
	for _, tx := range o.Categorized {
		s.metrics.ObserveCategory(string(tx.Category))
	}

	s.logger.InfoContext(ctx, "statement parsed",
		slog.String("document", o.Document),
		slog.String("bank", bank),
		slog.Int("transactions", len(o.Categorized)),
		slog.Int("rows", diag.Rows),
		slog.Int("dropped", diag.TotalDropped()),
		slog.Int("continuations", diag.Continuations),
	)
}

func (s *StatementService) persist(ctx context.Context, o *Outcome, name, checksum string) error {
	if o.Status != OutcomeRecognized {
		if err := s.repo.RecordFailure(ctx, name, checksum); err != nil {
			s.logger.WarnContext(ctx, "failed to record unrecognized statement",
				slog.String("document", name), slog.Any("error", err))
		}
		return nil
	}

	info := o.Result.AccountInfo
	id, err := s.repo.Save(ctx, &repository.StatementRecord{
		Filename:      name,
		Checksum:      checksum,
		BankName:      o.Result.BankName,
		AccountNumber: info.AccountNumber,
		PeriodStart:   info.PeriodStart,
		PeriodEnd:     info.PeriodEnd,
		Status:        statement.StatusCompleted,
		Transactions:  o.Categorized,
	})
	if err != nil {
		return err
	}
	o.StatementID = id
	s.logger.InfoContext(ctx, "statement saved",
		slog.String("document", name),
		slog.String("statement_id", id.String()),
	)
	return nil
}

// ProcessBatch processes paths concurrently, bounded by the worker count.
// Results keep the input order. A failing document does not stop the
// others; only context cancellation aborts the batch.
func (s *StatementService) ProcessBatch(ctx context.Context, paths []string, opts ...ProcessOption) ([]BatchResult, error) {
	results := make([]BatchResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = BatchResult{Path: path, Err: err}
				return err
			}
			out, err := s.Process(gctx, path, opts...)
			results[i] = BatchResult{Path: path, Outcome: out, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch aborted: %w", err)
	}
	return results, nil
}

func (s *StatementService) fail(span trace.Span, name string, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.ObserveDocument("", "error", time.Since(start).Seconds())
	s.logger.Error("failed to process statement",
		slog.String("document", name),
		slog.Any("error", err),
	)
	return err
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", extractor.ErrOpenDocument, err)
	}
	defer f.Close()
	return repository.Checksum(f)
}

func bankOf(o *Outcome) string {
	if o.Result == nil {
		return ""
	}
	return o.Result.BankName
}

func docName(doc *extractor.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Name
}
