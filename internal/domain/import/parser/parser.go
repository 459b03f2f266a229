package parser

import (
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// Parse runs one adapter over an extracted document. It returns false
// when the adapter does not recognise the document; the caller then
// tries another vendor or reports an unrecognized format.
//
// Parse has no side effects and never fails: malformed rows are dropped
// and reported through ParseOutput.Diagnostics.
func Parse(doc *extractor.Document, a Adapter) (*ParseOutput, bool) {
	if doc == nil || a == nil {
		return nil, false
	}

	if !a.Detect(doc.Text(0)) {
		return nil, false
	}
	return ParseAs(doc, a), true
}

// ParseAs runs a without checking its signatures. It backs vendor-pinned
// parsing, where the caller already knows the bank.
func ParseAs(doc *extractor.Document, a Adapter) *ParseOutput {
	text := doc.Text(0)
	info := a.ExtractAccountInfo(text)
	ex := a.ExtractTransactions(doc.Rows(), info)

	txs := ex.Transactions
	if txs == nil {
		txs = []statement.ParsedTransaction{}
	}

	return &ParseOutput{
		Result: &statement.ParseResult{
			BankName:     a.ID(),
			AccountInfo:  info,
			Transactions: txs,
		},
		Diagnostics: ex.Diagnostics,
	}
}

// ParseOutput is a parse result plus the row diagnostics behind it.
type ParseOutput struct {
	Result      *statement.ParseResult
	Diagnostics Diagnostics
}

// ParseDetected detects the vendor on the leading pages and parses with it.
func ParseDetected(doc *extractor.Document, d *Detector) (*ParseOutput, bool) {
	a, ok := d.DetectDocument(doc)
	if !ok {
		return nil, false
	}
	return Parse(doc, a)
}
