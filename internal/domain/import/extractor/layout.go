package extractor

import (
	"math"
	"sort"
	"strings"
)

// fragment is a run of text drawn at a horizontal position on one line.
type fragment struct {
	X, W, Size float64
	S          string
}

// line is every fragment sharing a baseline.
type line []fragment

// cell is a horizontally contiguous group of fragments.
type cell struct {
	x0, x1 float64
	text   string
}

func (c cell) center() float64 { return (c.x0 + c.x1) / 2 }

// LayoutOptions tunes how fragments are grouped. Gaps are expressed as
// multiples of the font size.
type LayoutOptions struct {
	// Below WordGap fragments join into one word; up to CellGap they are
	// separated by a space; beyond CellGap a new cell starts.
	WordGap float64
	CellGap float64
	// HeaderKeywords mark the line whose cells define column positions.
	HeaderKeywords []string
	// MinHeaderHits is how many keywords a header line must contain.
	MinHeaderHits int
}

// DefaultLayoutOptions suit single-column statement tables.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		WordGap: 0.15,
		CellGap: 1.0,
		HeaderKeywords: []string{
			"DATE", "DESCRIPTION", "DETAILS", "PARTICULARS", "TRANSACTION",
			"WITHDRAWAL", "DEPOSIT", "DEBIT", "CREDIT", "AMOUNT", "BALANCE",
			"PAID OUT", "PAID IN",
		},
		MinHeaderHits: 2,
	}
}

// splitCells groups a line's fragments into cells by horizontal gaps.
func (o LayoutOptions) splitCells(l line) []cell {
	frags := make([]fragment, 0, len(l))
	for _, f := range l {
		if strings.TrimSpace(f.S) != "" {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return nil
	}
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	var cells []cell
	var b strings.Builder
	cur := cell{x0: frags[0].X, x1: frags[0].X + frags[0].W}
	b.WriteString(strings.TrimSpace(frags[0].S))

	for _, f := range frags[1:] {
		size := f.Size
		if size <= 0 {
			size = 10
		}
		gap := f.X - cur.x1
		switch {
		case gap <= o.WordGap*size:
			b.WriteString(strings.TrimSpace(f.S))
		case gap <= o.CellGap*size:
			b.WriteByte(' ')
			b.WriteString(strings.TrimSpace(f.S))
		default:
			cur.text = b.String()
			cells = append(cells, cur)
			b.Reset()
			b.WriteString(strings.TrimSpace(f.S))
			cur = cell{x0: f.X}
		}
		cur.x1 = math.Max(cur.x1, f.X+f.W)
	}
	cur.text = b.String()
	return append(cells, cur)
}

func (o LayoutOptions) isHeader(cells []cell) bool {
	var parts []string
	for _, c := range cells {
		parts = append(parts, c.text)
	}
	joined := strings.ToUpper(strings.Join(parts, " "))
	hits := 0
	for _, kw := range o.HeaderKeywords {
		if strings.Contains(joined, kw) {
			hits++
		}
	}
	return hits >= o.MinHeaderHits && len(cells) >= 3
}

// columns holds the boundaries between header cells.
type columns struct {
	bounds []float64 // len = number of columns - 1
}

func newColumns(header []cell) columns {
	bounds := make([]float64, 0, len(header)-1)
	for i := 1; i < len(header); i++ {
		bounds = append(bounds, (header[i-1].x1+header[i].x0)/2)
	}
	return columns{bounds: bounds}
}

func (c columns) width() int { return len(c.bounds) + 1 }

func (c columns) index(x float64) int {
	return sort.SearchFloat64s(c.bounds, x)
}

// align places cells into the header's column grid. Cells falling into
// the same column are joined with a space.
func (c columns) align(cells []cell) Row {
	row := make(Row, c.width())
	for _, cl := range cells {
		i := c.index(cl.center())
		if row[i] == "" {
			row[i] = cl.text
		} else {
			row[i] += " " + cl.text
		}
	}
	return row
}

// buildTables turns a page's lines into tables. Lines before the first
// header are emitted as raw cells; every header starts a new aligned table.
func (o LayoutOptions) buildTables(lines []line) ([]Table, string) {
	var (
		tables []Table
		cur    Table
		grid   *columns
		text   strings.Builder
	)

	for _, l := range lines {
		cells := o.splitCells(l)
		if len(cells) == 0 {
			continue
		}

		raw := make(Row, len(cells))
		for i, c := range cells {
			raw[i] = c.text
		}
		if text.Len() > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(strings.Join(raw, " "))

		if o.isHeader(cells) {
			if len(cur) > 0 {
				tables = append(tables, cur)
			}
			g := newColumns(cells)
			grid = &g
			cur = Table{raw}
			continue
		}

		if grid != nil {
			cur = append(cur, grid.align(cells))
		} else {
			cur = append(cur, raw)
		}
	}
	if len(cur) > 0 {
		tables = append(tables, cur)
	}
	return tables, text.String()
}
