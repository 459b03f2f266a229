package parser

import "sort"

// DropReason says why a table row did not become a transaction.
type DropReason string

const (
	DropHeader           DropReason = "header"
	DropShortRow         DropReason = "short_row"
	DropBadDate          DropReason = "bad_date"
	DropEmptyDescription DropReason = "empty_description"
	DropPanic            DropReason = "panic"
)

// Diagnostics counts what happened to the rows of one extraction.
// Dropping stays silent for callers; these counts make it observable.
type Diagnostics struct {
	Rows          int
	Continuations int
	Dropped       map[DropReason]int
}

func newDiagnostics() Diagnostics {
	return Diagnostics{Dropped: make(map[DropReason]int)}
}

func (d *Diagnostics) drop(reason DropReason) {
	if d.Dropped == nil {
		d.Dropped = make(map[DropReason]int)
	}
	d.Dropped[reason]++
}

// TotalDropped sums every drop reason.
func (d Diagnostics) TotalDropped() int {
	n := 0
	for _, c := range d.Dropped {
		n += c
	}
	return n
}

// Reasons returns the drop reasons seen, sorted for stable output.
func (d Diagnostics) Reasons() []DropReason {
	out := make([]DropReason, 0, len(d.Dropped))
	for r := range d.Dropped {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
