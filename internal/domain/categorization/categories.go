package categorization

import (
	"fmt"
	"strings"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// The closed category taxonomy.
const (
	FoodDining      statement.Category = "FOOD_DINING"
	Shopping        statement.Category = "SHOPPING"
	Transport       statement.Category = "TRANSPORT"
	Entertainment   statement.Category = "ENTERTAINMENT"
	BillsUtilities  statement.Category = "BILLS_UTILITIES"
	Healthcare      statement.Category = "HEALTHCARE"
	Income          statement.Category = "INCOME"
	Transfer        statement.Category = "TRANSFER"
	Investment      statement.Category = "INVESTMENT"
	LoanPayment     statement.Category = "LOAN_PAYMENT"
	Insurance       statement.Category = "INSURANCE"
	Education       statement.Category = "EDUCATION"
	Travel          statement.Category = "TRAVEL"
	PersonalCare    statement.Category = "PERSONAL_CARE"
	Groceries       statement.Category = "GROCERIES"
	Other           statement.Category = "OTHER"
)

var displayNames = map[statement.Category]string{
	FoodDining:     "Food & Dining",
	Shopping:       "Shopping",
	Transport:      "Transport",
	Entertainment:  "Entertainment",
	BillsUtilities: "Bills & Utilities",
	Healthcare:     "Healthcare",
	Income:         "Income",
	Transfer:       "Transfer",
	Investment:     "Investment",
	LoanPayment:    "Loan Payment",
	Insurance:      "Insurance",
	Education:      "Education",
	Travel:         "Travel",
	PersonalCare:   "Personal Care",
	Groceries:      "Groceries",
	Other:          "Other",
}

// All lists the taxonomy in its canonical order.
func All() []statement.Category {
	return []statement.Category{
		FoodDining, Shopping, Transport, Entertainment, BillsUtilities,
		Healthcare, Income, Transfer, Investment, LoanPayment,
		Insurance, Education, Travel, PersonalCare, Groceries, Other,
	}
}

// DisplayName returns the human label, e.g. "Food & Dining".
func DisplayName(c statement.Category) string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

// ParseCategory accepts either the code ("FOOD_DINING") or the display
// name ("Food & Dining"), case-insensitively.
func ParseCategory(s string) (statement.Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range All() {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, displayNames[c]) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
