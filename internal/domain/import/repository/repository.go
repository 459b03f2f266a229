// Package repository persists parsed statements and their transactions.
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// ErrDuplicateStatement is returned when a file with the same checksum was
// already stored successfully.
var ErrDuplicateStatement = errors.New("statement already imported")

// DBTX is the subset of pgxpool.Pool the repository needs. pgxmock pools
// satisfy it too.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatementRecord is one stored statement.
type StatementRecord struct {
	ID            uuid.UUID
	Filename      string
	Checksum      string
	BankName      string
	AccountNumber *string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	Status        statement.Status
	Transactions  []statement.CategorizedTransaction
	// TransactionCount is filled on reads; Transactions is not loaded.
	TransactionCount int
	CreatedAt        time.Time
}

// StatementRepository defines persistence operations for statements.
type StatementRepository interface {
	Save(ctx context.Context, rec *StatementRecord) (uuid.UUID, error)
	RecordFailure(ctx context.Context, filename, checksum string) error
	FindByChecksum(ctx context.Context, checksum string) (*StatementRecord, error)
}

// PostgresStatementRepository implements StatementRepository with pgx.
type PostgresStatementRepository struct {
	db DBTX
}

// NewPostgresStatementRepository creates a new repository.
func NewPostgresStatementRepository(db DBTX) *PostgresStatementRepository {
	return &PostgresStatementRepository{db: db}
}

const upsertStatement = `
	INSERT INTO statements (
		id, filename, checksum, bank_name, account_number,
		period_start, period_end, status, transaction_count
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (checksum) DO UPDATE SET
		filename = EXCLUDED.filename,
		bank_name = EXCLUDED.bank_name,
		account_number = EXCLUDED.account_number,
		period_start = EXCLUDED.period_start,
		period_end = EXCLUDED.period_end,
		status = EXCLUDED.status,
		transaction_count = EXCLUDED.transaction_count,
		updated_at = now()
	WHERE statements.status = 'failed'
	RETURNING id`

const insertTransaction = `
	INSERT INTO statement_transactions (
		id, statement_id, position, date, description, amount, balance,
		original_description, original_amount, category, confidence_score,
		auto_categorized, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// Save stores the statement and its transactions in one transaction.
// A previous failed import of the same file is replaced; a completed one
// yields ErrDuplicateStatement.
func (r *PostgresStatementRepository) Save(ctx context.Context, rec *StatementRecord) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = statement.StatusCompleted
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uuid.UUID
	err = tx.QueryRow(ctx, upsertStatement,
		rec.ID, rec.Filename, rec.Checksum, rec.BankName, rec.AccountNumber,
		rec.PeriodStart, rec.PeriodEnd, string(rec.Status), len(rec.Transactions),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%w: checksum %s", ErrDuplicateStatement, rec.Checksum)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert statement: %w", err)
	}

	// A replaced failed import may carry rows from an interrupted save.
	if _, err := tx.Exec(ctx, `DELETE FROM statement_transactions WHERE statement_id = $1`, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to clear transactions: %w", err)
	}

	for i, t := range rec.Transactions {
		_, err := tx.Exec(ctx, insertTransaction,
			uuid.New(), id, i, t.Date, t.Description, t.Amount, t.Balance,
			t.Description, t.Amount, string(t.Category), decimal.NewFromFloat(t.Confidence),
			t.AutoCategorized, string(statement.ReviewPending),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit statement: %w", err)
	}
	rec.ID = id
	return id, nil
}

// RecordFailure stores a failed import so it shows up for review. It never
// overwrites a completed statement.
func (r *PostgresStatementRepository) RecordFailure(ctx context.Context, filename, checksum string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO statements (id, filename, checksum, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (checksum) DO NOTHING`,
		uuid.New(), filename, checksum, string(statement.StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("failed to record failed import: %w", err)
	}
	return nil
}

// FindByChecksum returns the stored statement for a file checksum, or nil
// if the file was never imported.
func (r *PostgresStatementRepository) FindByChecksum(ctx context.Context, checksum string) (*StatementRecord, error) {
	query := `
		SELECT id, filename, checksum, COALESCE(bank_name, ''), account_number,
			period_start, period_end, status, transaction_count, created_at
		FROM statements
		WHERE checksum = $1`

	var (
		rec    StatementRecord
		status string
	)
	err := r.db.QueryRow(ctx, query, checksum).Scan(
		&rec.ID, &rec.Filename, &rec.Checksum, &rec.BankName, &rec.AccountNumber,
		&rec.PeriodStart, &rec.PeriodEnd, &status, &rec.TransactionCount, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find statement: %w", err)
	}
	rec.Status = statement.Status(status)
	return &rec, nil
}

// Checksum returns the hex SHA-256 of r.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash document: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
