package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/categorization"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/parser"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/repository"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/service"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/config"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/db"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/metrics"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB // nil when DATABASE_URL is empty
	Logger *slog.Logger

	// Repositories
	StatementRepo repository.StatementRepository

	// Services
	Registry         *parser.Registry
	Categorizer      *categorization.Engine
	Metrics          *metrics.Metrics
	StatementService *service.StatementService
	Inbox            *storage.LocalInbox // set by InitInbox
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize services
	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase connects and runs migrations when persistence is configured
func (d *Dependencies) initDatabase(ctx context.Context) error {
	if !d.Config.Database.PersistenceEnabled() {
		d.Logger.Debug("DATABASE_URL not set, persistence disabled")
		return nil
	}

	database, err := connectDatabase(ctx, d.Config, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(ctx); err != nil {
		d.DB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.DB, error) {
	return db.New(ctx, db.Config{
		DSN:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}, logger)
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	if d.DB == nil {
		return
	}
	d.StatementRepo = repository.NewPostgresStatementRepository(d.DB.Pool)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	rules := categorization.DefaultRules()
	if path := d.Config.Processing.RulesFile; path != "" {
		loaded, err := categorization.LoadRules(path)
		if err != nil {
			return err
		}
		rules = loaded
		d.Logger.Info("loaded categorization rules", slog.String("file", path))
	}

	engine, err := categorization.NewEngine(rules)
	if err != nil {
		return err
	}
	d.Categorizer = engine

	d.Registry = parser.DefaultRegistry()
	d.Metrics = metrics.New()

	d.StatementService = service.NewStatementService(d.Registry, d.Categorizer, d.Logger).
		WithMetrics(d.Metrics).
		WithDetectPages(d.Config.Processing.DetectPages).
		WithWorkers(d.Config.Processing.Workers).
		WithOptions(extractor.Options{
			MaxSize:           d.Config.Inbox.MaxUploadSize,
			AllowedExtensions: d.Config.Inbox.AllowedExtensions,
		})
	if d.StatementRepo != nil {
		d.StatementService.WithRepository(d.StatementRepo)
	}

	return nil
}

// InitInbox creates the inbox directories. Only watch needs them.
func (d *Dependencies) InitInbox() error {
	inbox, err := storage.NewLocalInbox(d.Config.Inbox.Dir, d.Config.Inbox.AllowedExtensions)
	if err != nil {
		return fmt.Errorf("failed to init inbox: %w", err)
	}
	d.Inbox = inbox
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Debug("cleanup completed")
}
