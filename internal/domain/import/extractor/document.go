// Package extractor turns statement files into paginated text and table rows.
// PDFs are read with ledongthuc/pdf and their tables rebuilt from glyph
// positions; spreadsheets are read with excelize, one sheet per page.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrOpenDocument      = errors.New("failed to open document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTooLarge          = errors.New("document exceeds maximum size")
)

// DefaultMaxSize is the largest document accepted by Open (10MB).
const DefaultMaxSize int64 = 10 << 20

// Row is one extracted table line. Empty strings stand for absent cells.
type Row []string

// Joined returns the cells joined by a single space.
func (r Row) Joined() string {
	return strings.Join(r, " ")
}

// Table is an ordered run of rows from one page.
type Table []Row

// Page is the extracted content of one page (or sheet).
type Page struct {
	Number int
	Text   string
	Tables []Table
}

// Document is an opened, fully extracted statement.
type Document struct {
	Name  string
	Pages []Page
}

// Text concatenates the text of the first maxPages pages.
// maxPages <= 0 means all pages.
func (d *Document) Text(maxPages int) string {
	if d == nil {
		return ""
	}
	pages := d.Pages
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// Rows flattens every table of every page, in page order.
func (d *Document) Rows() []Row {
	if d == nil {
		return nil
	}
	var rows []Row
	for _, p := range d.Pages {
		for _, t := range p.Tables {
			rows = append(rows, t...)
		}
	}
	return rows
}

// Extractor reads one document format.
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (*Document, error)
}

// Options controls which documents Open accepts.
type Options struct {
	MaxSize           int64
	AllowedExtensions []string
}

// DefaultOptions accepts PDF and XLSX documents up to DefaultMaxSize.
func DefaultOptions() Options {
	return Options{
		MaxSize:           DefaultMaxSize,
		AllowedExtensions: []string{".pdf", ".xlsx"},
	}
}

func (o Options) allows(ext string) bool {
	if len(o.AllowedExtensions) == 0 {
		return true
	}
	for _, e := range o.AllowedExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// ForExtension returns the extractor registered for a file extension.
func ForExtension(ext string) (Extractor, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return NewPDFExtractor(), nil
	case ".xlsx":
		return NewXLSXExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Open reads and extracts the document at path. Every failure wraps
// ErrOpenDocument so callers can tell document-level failures apart.
func Open(ctx context.Context, path string, opts Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}

	return OpenReader(ctx, filepath.Base(path), f, info.Size(), opts)
}

// OpenReader extracts a document from an in-memory or streamed source.
// name is only used to pick the format.
func OpenReader(ctx context.Context, name string, r io.ReaderAt, size int64, opts Options) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !opts.allows(ext) {
		return nil, fmt.Errorf("%w: %w: %q", ErrOpenDocument, ErrUnsupportedFormat, ext)
	}
	if opts.MaxSize > 0 && size > opts.MaxSize {
		return nil, fmt.Errorf("%w: %w: %d bytes", ErrOpenDocument, ErrTooLarge, size)
	}

	ex, err := ForExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}

	doc, err := ex.Extract(ctx, r, size)
	if err != nil {
		if errors.Is(err, ErrOpenDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}
	doc.Name = name
	return doc, nil
}

// NewMemoryDocument builds a document from already extracted pages.
// Page numbers are assigned when missing.
func NewMemoryDocument(name string, pages ...Page) *Document {
	for i := range pages {
		if pages[i].Number == 0 {
			pages[i].Number = i + 1
		}
	}
	return &Document{Name: name, Pages: pages}
}

// TextPage is a convenience for a page with text and a single table.
func TextPage(text string, rows ...Row) Page {
	p := Page{Text: text}
	if len(rows) > 0 {
		p.Tables = []Table{rows}
	}
	return p
}
