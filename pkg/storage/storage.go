// Package storage provides the statement inbox: a directory where documents
// wait to be processed and are then archived as processed or failed.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about an inbox file
type FileInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"` // Original filename
	Size      int64     `json:"size"`
	Path      string    `json:"path"` // Location on disk
	CreatedAt time.Time `json:"created_at"`
}

// FailureInfo is written next to a failed document.
type FailureInfo struct {
	File     FileInfo  `json:"file"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Inbox defines the operations of a document inbox
type Inbox interface {
	// Add copies a document into the inbox
	Add(ctx context.Context, filename string, r io.Reader) (*FileInfo, error)

	// Pending lists documents waiting to be processed, oldest first
	Pending(ctx context.Context) ([]*FileInfo, error)

	// MarkProcessed archives a document after a successful run
	MarkProcessed(ctx context.Context, f *FileInfo) (*FileInfo, error)

	// MarkFailed archives a document together with the failure reason
	MarkFailed(ctx context.Context, f *FileInfo, reason error) (*FileInfo, error)
}
