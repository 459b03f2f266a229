package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/repository"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/service"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/metrics"
	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/storage"
)

// fakeProcessor decides the outcome from the file name.
type fakeProcessor struct {
	mu    sync.Mutex
	calls []string
}

func (p *fakeProcessor) Process(ctx context.Context, path string, opts ...service.ProcessOption) (*service.Outcome, error) {
	p.mu.Lock()
	p.calls = append(p.calls, filepath.Base(path))
	p.mu.Unlock()

	name := filepath.Base(path)
	switch {
	case strings.Contains(name, "dup"):
		return nil, repository.ErrDuplicateStatement
	case strings.Contains(name, "broken"):
		return nil, fmt.Errorf("%w: bad xref table", extractor.ErrOpenDocument)
	case strings.Contains(name, "unknown"):
		return &service.Outcome{Document: name, Status: service.OutcomeUnrecognized}, nil
	default:
		return &service.Outcome{Document: name, Status: service.OutcomeRecognized}, nil
	}
}

func (p *fakeProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T, names ...string) (*storage.LocalInbox, *fakeProcessor) {
	t.Helper()
	inbox, err := storage.NewLocalInbox(t.TempDir(), []string{".pdf", ".xlsx"})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		path := filepath.Join(inbox.Path(), name)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
		mod := base.Add(time.Duration(i) * time.Second)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	return inbox, &fakeProcessor{}
}

func TestScheduler_Sweep(t *testing.T) {
	inbox, proc := setup(t, "dbs.pdf", "dup.xlsx", "unknown.xlsx", "broken.pdf", "notes.txt")
	m := metrics.New()

	s := NewScheduler("@every 1m", inbox, proc, testLogger()).WithMetrics(m)
	stats, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SweepStats{Pending: 4, Processed: 1, Duplicates: 1, Failed: 2}, stats)
	assert.Equal(t, []string{"dbs.pdf", "dup.xlsx", "unknown.xlsx", "broken.pdf"}, proc.calls)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.InboxPending))

	root := inbox.Path()
	assert.FileExists(t, filepath.Join(root, "processed", "dbs.pdf"))
	assert.FileExists(t, filepath.Join(root, "processed", "dup.xlsx"))
	assert.FileExists(t, filepath.Join(root, "failed", "unknown.xlsx"))
	assert.FileExists(t, filepath.Join(root, "failed", "unknown.xlsx.json"))
	assert.FileExists(t, filepath.Join(root, "failed", "broken.pdf.json"))
	assert.FileExists(t, filepath.Join(root, "notes.txt"))

	raw, err := os.ReadFile(filepath.Join(root, "failed", "unknown.xlsx.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), service.ErrUnrecognizedFormat.Error())

	again, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepStats{}, again)
	assert.Equal(t, 4, proc.count())
}

func TestScheduler_SweepCancelled(t *testing.T) {
	inbox, proc := setup(t, "a.pdf", "b.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler("@every 1m", inbox, proc, testLogger()).WithRateLimit(1)
	_, err := s.Sweep(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, proc.count())
}

func TestScheduler_StartInvalidSchedule(t *testing.T) {
	inbox, proc := setup(t)
	s := NewScheduler("not a schedule", inbox, proc, testLogger())
	assert.Error(t, s.Start())
}

func TestScheduler_RunNow(t *testing.T) {
	inbox, proc := setup(t, "ocbc.pdf")
	s := NewScheduler("@every 1h", inbox, proc, testLogger())
	require.NoError(t, s.Start())
	defer s.Stop()

	s.RunNow()
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(inbox.Path(), "processed", "ocbc.pdf"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}
