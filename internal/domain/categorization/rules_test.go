package categorization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	data := []byte(`
categories:
  - category: Groceries
    patterns: ['ntuc|fairprice', 'sheng\s*siong']
  - category: INCOME
    patterns: ['salary']
`)

	rules, err := ParseRules(data)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, Groceries, rules[0].Category)
	assert.Equal(t, []string{"ntuc|fairprice", `sheng\s*siong`}, rules[0].Patterns)
	assert.Equal(t, Income, rules[1].Category)

	engine, err := NewEngine(rules)
	require.NoError(t, err)
	assert.Equal(t, Groceries, engine.Categorize("Sheng Siong Supermarket", amt("-20")).Category)
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "categories: [unclosed"},
		{"empty", "categories: []"},
		{"unknown category", "categories:\n  - category: PETS\n    patterns: ['dog']"},
		{"fallback with patterns", "categories:\n  - category: OTHER\n    patterns: ['x']"},
		{"duplicate", "categories:\n  - category: TRAVEL\n    patterns: ['a']\n  - category: Travel\n    patterns: ['b']"},
		{"no patterns", "categories:\n  - category: TRAVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidRules)
		})
	}
}

func TestMarshalRules_ReadsBack(t *testing.T) {
	data, err := MarshalRules(DefaultRules())
	require.NoError(t, err)

	rules, err := ParseRules(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - category: TRAVEL\n    patterns: ['hotel']\n"), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, RuleSet{{Travel, []string{"hotel"}}}, rules)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	assert.Len(t, All(), 16)
	assert.Equal(t, "Food & Dining", DisplayName(FoodDining))
	assert.Equal(t, "Bills & Utilities", DisplayName(BillsUtilities))
	assert.Equal(t, "CUSTOM", DisplayName("CUSTOM"))

	c, err := ParseCategory("food & dining")
	require.NoError(t, err)
	assert.Equal(t, FoodDining, c)

	c, err = ParseCategory("loan_payment")
	require.NoError(t, err)
	assert.Equal(t, LoanPayment, c)

	_, err = ParseCategory("Pets")
	assert.Error(t, err)
}
