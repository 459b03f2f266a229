// Package categorization assigns spending categories to statement
// transactions with an ordered table of regular expressions.
package categorization

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// Confidence values. A long pattern is one whose source text exceeds
// longPattern characters.
const (
	IncomeConfidence   = 0.95
	StrongConfidence   = 0.85
	WeakConfidence     = 0.75
	FallbackConfidence = 0.30

	longPattern = 20
)

type pattern struct {
	source string
	re     *regexp.Regexp
}

func (p pattern) confidence() float64 {
	if len(p.source) > longPattern {
		return StrongConfidence
	}
	return WeakConfidence
}

type compiledCategory struct {
	category statement.Category
	patterns []pattern
}

// Engine is the compiled rule table. It is built once and never
// modified, so one Engine can be shared by concurrent parses.
type Engine struct {
	income  []pattern
	ordered []compiledCategory
}

// NewEngine compiles rules. Patterns are matched case-insensitively
// against the lower-cased description.
func NewEngine(rules RuleSet) (*Engine, error) {
	e := &Engine{ordered: make([]compiledCategory, 0, len(rules))}
	for _, r := range rules {
		cc := compiledCategory{category: r.Category}
		for _, src := range r.Patterns {
			re, err := regexp.Compile("(?i)" + src)
			if err != nil {
				return nil, fmt.Errorf("failed to compile %s pattern %q: %w", r.Category, src, err)
			}
			p := pattern{source: src, re: re}
			cc.patterns = append(cc.patterns, p)
			if r.Category == Income {
				e.income = append(e.income, p)
			}
		}
		e.ordered = append(e.ordered, cc)
	}
	return e, nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := NewEngine(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
})

// Default returns the shared engine built from DefaultRules.
func Default() *Engine {
	return defaultEngine()
}

// Categorize classifies one transaction. It never fails:
//  1. credits matching an INCOME pattern are INCOME at 0.95;
//  2. otherwise the first category with a matching pattern wins, at 0.85
//     for long patterns and 0.75 for short ones;
//  3. no match is OTHER at 0.30.
func (e *Engine) Categorize(description string, amount decimal.Decimal) statement.CategoryAssignment {
	a, _ := e.Explain(description, amount)
	return a
}

// CategorizeBatch classifies each transaction independently, keeps the
// input order and marks every result as auto-categorized.
func (e *Engine) CategorizeBatch(txs []statement.ParsedTransaction) []statement.CategorizedTransaction {
	out := make([]statement.CategorizedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = statement.CategorizedTransaction{
			ParsedTransaction:  tx,
			CategoryAssignment: e.Categorize(tx.Description, tx.Amount),
			AutoCategorized:    true,
		}
	}
	return out
}

// Explain returns the category, confidence and the pattern that decided
// it, or an empty pattern for the fallback. Used by the debug tooling.
func (e *Engine) Explain(description string, amount decimal.Decimal) (statement.CategoryAssignment, string) {
	desc := strings.ToLower(description)
	if amount.IsPositive() {
		for _, p := range e.income {
			if p.re.MatchString(desc) {
				return statement.CategoryAssignment{Category: Income, Confidence: IncomeConfidence}, p.source
			}
		}
	}
	for _, c := range e.ordered {
		for _, p := range c.patterns {
			if p.re.MatchString(desc) {
				return statement.CategoryAssignment{Category: c.category, Confidence: p.confidence()}, p.source
			}
		}
	}
	return statement.CategoryAssignment{Category: Other, Confidence: FallbackConfidence}, ""
}

// PatternCount returns the number of compiled patterns.
func (e *Engine) PatternCount() int {
	n := 0
	for _, c := range e.ordered {
		n += len(c.patterns)
	}
	return n
}
