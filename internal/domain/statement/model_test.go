package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCategorizer struct{}

func (fixedCategorizer) Categorize(description string, amount decimal.Decimal) CategoryAssignment {
	if amount.IsPositive() {
		return CategoryAssignment{Category: "Income", Confidence: 0.95}
	}
	return CategoryAssignment{Category: "Other", Confidence: 0.30}
}

func TestAnnotate(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result := &ParseResult{
		BankName: "DBS",
		Transactions: []ParsedTransaction{
			{Date: day, Description: "Grab Ride", Amount: decimal.RequireFromString("-12.50")},
			{Date: day, Description: "Salary", Amount: decimal.RequireFromString("3000")},
		},
	}

	out := Annotate(result, fixedCategorizer{})
	require.Len(t, out, 2)

	assert.Equal(t, "Grab Ride", out[0].Description)
	assert.Equal(t, Category("Other"), out[0].Category)
	assert.Equal(t, Category("Income"), out[1].Category)
	for _, tx := range out {
		assert.True(t, tx.AutoCategorized)
	}

	assert.Nil(t, Annotate(nil, fixedCategorizer{}))
}

func TestAccountInfo_HasPeriod(t *testing.T) {
	now := time.Now()
	assert.False(t, AccountInfo{}.HasPeriod())
	assert.False(t, AccountInfo{PeriodStart: &now}.HasPeriod())
	assert.True(t, AccountInfo{PeriodStart: &now, PeriodEnd: &now}.HasPeriod())
}

func TestReviewStatus_Valid(t *testing.T) {
	assert.True(t, ReviewPending.Valid())
	assert.True(t, ReviewEdited.Valid())
	assert.False(t, ReviewStatus("archived").Valid())
}
