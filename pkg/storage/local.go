package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// LocalInbox implements Inbox using the local filesystem. Pending
// documents sit at the root of basePath; archived ones move into the
// processed/ and failed/ subdirectories.
type LocalInbox struct {
	basePath   string
	extensions map[string]bool
}

// NewLocalInbox creates the inbox directories. Only files with one of
// extensions (lower case, with dot) are considered pending.
func NewLocalInbox(basePath string, extensions []string) (*LocalInbox, error) {
	for _, dir := range []string{basePath, filepath.Join(basePath, processedDir), filepath.Join(basePath, failedDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}

	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &LocalInbox{basePath: basePath, extensions: exts}, nil
}

// Path returns the inbox root.
func (s *LocalInbox) Path() string {
	return s.basePath
}

// Add stores a document under a UUID-prefixed name so uploads with the
// same filename do not collide.
func (s *LocalInbox) Add(ctx context.Context, filename string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	safeFilename := sanitizeFilename(filepath.Base(filename))
	storedFilename := fmt.Sprintf("%s_%s", fileID.String()[:8], safeFilename)
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &FileInfo{
		ID:        fileID,
		Name:      safeFilename,
		Size:      size,
		Path:      filePath,
		CreatedAt: time.Now(),
	}, nil
}

// Pending lists documents with an allowed extension, oldest first.
func (s *LocalInbox) Pending(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !s.extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, &FileInfo{
			ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(entry.Name())),
			Name:      entry.Name(),
			Size:      info.Size(),
			Path:      filepath.Join(s.basePath, entry.Name()),
			CreatedAt: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].Name < files[j].Name
		}
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files, nil
}

// MarkProcessed moves a document into processed/.
func (s *LocalInbox) MarkProcessed(ctx context.Context, f *FileInfo) (*FileInfo, error) {
	return s.archive(f, processedDir)
}

// MarkFailed moves a document into failed/ and writes the reason next to
// it as <name>.json.
func (s *LocalInbox) MarkFailed(ctx context.Context, f *FileInfo, reason error) (*FileInfo, error) {
	moved, err := s.archive(f, failedDir)
	if err != nil {
		return nil, err
	}

	msg := "unknown"
	if reason != nil {
		msg = reason.Error()
	}
	if err := saveMetadata(moved.Path+".json", FailureInfo{File: *moved, Reason: msg, FailedAt: time.Now()}); err != nil {
		return moved, err
	}
	return moved, nil
}

func (s *LocalInbox) archive(f *FileInfo, dir string) (*FileInfo, error) {
	if _, err := os.Stat(f.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.Name)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	target := filepath.Join(s.basePath, dir, filepath.Base(f.Path))
	if _, err := os.Stat(target); err == nil {
		// Same name archived before; keep both.
		target = filepath.Join(s.basePath, dir, fmt.Sprintf("%s_%s", uuid.NewString()[:8], filepath.Base(f.Path)))
	}

	if err := os.Rename(f.Path, target); err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}

	moved := *f
	moved.Path = target
	return &moved, nil
}

// saveMetadata saves metadata to a JSON file
func saveMetadata(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
