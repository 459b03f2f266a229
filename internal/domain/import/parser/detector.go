package parser

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/import/extractor"
)

// DefaultDetectPages is how many leading pages are scanned for signatures.
const DefaultDetectPages = 2

// Detector finds the vendor of a document. All signatures are compiled
// into one Aho-Corasick automaton so the text is scanned once; when
// several vendors match, the earliest registered one wins, which is the
// same answer as calling each adapter's Detect in order.
type Detector struct {
	adapters []Adapter
	owners   []int // signature index -> adapter index
	pages    int

	// ahocorasick.Matcher updates internal counters during Match.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// NewDetector compiles the signatures of every adapter in r.
func NewDetector(r *Registry) *Detector {
	d := &Detector{adapters: r.Adapters(), pages: DefaultDetectPages}

	var patterns []string
	for i, a := range d.adapters {
		for _, sig := range a.Signatures() {
			patterns = append(patterns, strings.ToUpper(sig))
			d.owners = append(d.owners, i)
		}
	}
	if len(patterns) > 0 {
		d.matcher = ahocorasick.NewStringMatcher(patterns)
	}
	return d
}

// WithPages changes how many leading pages DetectDocument scans.
func (d *Detector) WithPages(n int) *Detector {
	if n > 0 {
		d.pages = n
	}
	return d
}

// Detect returns the first registered adapter whose signature occurs in text.
func (d *Detector) Detect(text string) (Adapter, bool) {
	if d.matcher == nil || text == "" {
		return nil, false
	}

	d.mu.Lock()
	hits := d.matcher.Match([]byte(strings.ToUpper(text)))
	d.mu.Unlock()

	best := -1
	for _, h := range hits {
		if owner := d.owners[h]; best < 0 || owner < best {
			best = owner
		}
	}
	if best < 0 {
		return nil, false
	}
	return d.adapters[best], true
}

// DetectDocument scans only the leading pages of doc.
func (d *Detector) DetectDocument(doc *extractor.Document) (Adapter, bool) {
	return d.Detect(doc.Text(d.pages))
}

// Matches lists every adapter whose signature occurs in text, in
// registration order. Used by diagnostics to expose ambiguous documents.
func (d *Detector) Matches(text string) []Adapter {
	var out []Adapter
	for _, a := range d.adapters {
		if a.Detect(text) {
			out = append(out, a)
		}
	}
	return out
}
