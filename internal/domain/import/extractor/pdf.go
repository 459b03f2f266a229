package extractor

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads text-layer PDFs. Scanned images are not supported.
type PDFExtractor struct {
	layout LayoutOptions
}

// NewPDFExtractor returns a PDF extractor with default layout options.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{layout: DefaultLayoutOptions()}
}

// WithLayout overrides the grouping thresholds.
func (e *PDFExtractor) WithLayout(o LayoutOptions) *PDFExtractor {
	e.layout = o
	return e
}

// Extract reads every page. The pdf library panics on some malformed
// content streams; those panics are reported as document-level errors.
func (e *PDFExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%w: malformed pdf: %v", ErrOpenDocument, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}

	doc = &Document{}
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}

		page, err := e.extractPage(p)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrOpenDocument, i, err)
		}
		page.Number = i
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func (e *PDFExtractor) extractPage(p pdf.Page) (Page, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return Page{}, fmt.Errorf("failed to read text rows: %w", err)
	}

	// Top of the page first; PDF y grows upwards.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	lines := make([]line, 0, len(rows))
	for _, row := range rows {
		l := make(line, 0, len(row.Content))
		for _, t := range row.Content {
			l = append(l, fragment{X: t.X, W: t.W, Size: t.FontSize, S: t.S})
		}
		lines = append(lines, l)
	}

	tables, text := e.layout.buildTables(lines)
	if text == "" {
		// Some producers only expose a plain text stream.
		plain, err := p.GetPlainText(nil)
		if err != nil {
			return Page{}, fmt.Errorf("failed to read plain text: %w", err)
		}
		text = plain
	}
	return Page{Text: text, Tables: tables}, nil
}
