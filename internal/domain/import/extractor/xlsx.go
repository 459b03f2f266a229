package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads spreadsheet exports of statements. Each sheet
// becomes one page whose single table is the sheet's rows.
type XLSXExtractor struct{}

// NewXLSXExtractor returns a spreadsheet extractor.
func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{}
}

// Extract reads every sheet in workbook order.
func (e *XLSXExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (*Document, error) {
	f, err := excelize.OpenReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}
	defer f.Close()

	doc := &Document{}
	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %w", ErrOpenDocument, sheet, err)
		}

		table := make(Table, 0, len(rows))
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			table = append(table, Row(r))
			lines = append(lines, strings.Join(r, " "))
		}

		page := Page{Number: i + 1, Text: strings.Join(lines, "\n")}
		if len(table) > 0 {
			page.Tables = []Table{table}
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}
