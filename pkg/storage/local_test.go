package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInbox(t *testing.T) *LocalInbox {
	t.Helper()
	inbox, err := NewLocalInbox(t.TempDir(), []string{".pdf", ".XLSX"})
	require.NoError(t, err)
	return inbox
}

func TestNewLocalInbox_CreatesDirectories(t *testing.T) {
	inbox := newInbox(t)
	for _, dir := range []string{processedDir, failedDir} {
		info, err := os.Stat(filepath.Join(inbox.Path(), dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLocalInbox_Add(t *testing.T) {
	inbox := newInbox(t)
	ctx := context.Background()

	f, err := inbox.Add(ctx, "../etc/dbs:jan.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "dbs_jan.pdf", f.Name)
	assert.Equal(t, int64(8), f.Size)
	assert.Equal(t, inbox.Path(), filepath.Dir(f.Path))
	assert.True(t, strings.HasSuffix(f.Path, "_dbs_jan.pdf"))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	again, err := inbox.Add(ctx, "dbs_jan.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, f.Path, again.Path)
}

func TestLocalInbox_Pending(t *testing.T) {
	inbox := newInbox(t)
	ctx := context.Background()
	dir := inbox.Path()

	base := time.Now().Add(-time.Hour)
	files := map[string]time.Time{
		"b.pdf":       base.Add(2 * time.Minute),
		"a.xlsx":      base.Add(time.Minute),
		"notes.txt":   base,
		".hidden.pdf": base,
	}
	for name, mod := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	pending, err := inbox.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a.xlsx", pending[0].Name)
	assert.Equal(t, "b.pdf", pending[1].Name)
	assert.Equal(t, int64(4), pending[0].Size)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = inbox.Pending(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalInbox_MarkProcessed(t *testing.T) {
	inbox := newInbox(t)
	ctx := context.Background()

	f, err := inbox.Add(ctx, "ocbc.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	moved, err := inbox.MarkProcessed(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(inbox.Path(), processedDir), filepath.Dir(moved.Path))
	assert.NoFileExists(t, f.Path)
	assert.FileExists(t, moved.Path)

	pending, err := inbox.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = inbox.MarkProcessed(ctx, f)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalInbox_MarkFailed(t *testing.T) {
	inbox := newInbox(t)
	ctx := context.Background()

	f, err := inbox.Add(ctx, "unknown.xlsx", strings.NewReader("data"))
	require.NoError(t, err)

	moved, err := inbox.MarkFailed(ctx, f, errors.New("unrecognized statement format"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(inbox.Path(), failedDir), filepath.Dir(moved.Path))

	raw, err := os.ReadFile(moved.Path + ".json")
	require.NoError(t, err)

	var info FailureInfo
	require.NoError(t, json.Unmarshal(raw, &info))
	assert.Equal(t, "unrecognized statement format", info.Reason)
	assert.Equal(t, f.ID, info.File.ID)
	assert.Equal(t, moved.Path, info.File.Path)
}

func TestLocalInbox_ArchiveNameCollision(t *testing.T) {
	inbox := newInbox(t)
	ctx := context.Background()

	path := filepath.Join(inbox.Path(), "same.pdf")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0644))
	first, err := inbox.MarkProcessed(ctx, &FileInfo{Name: "same.pdf", Path: path})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0644))
	second, err := inbox.MarkProcessed(ctx, &FileInfo{Name: "same.pdf", Path: path})
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.FileExists(t, first.Path)
	assert.FileExists(t, second.Path)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"statement.pdf", "statement.pdf"},
		{"a/b.pdf", "a_b.pdf"},
		{"..secret.pdf", "_secret.pdf"},
		{"q?<x>|.xlsx", "q__x__.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
