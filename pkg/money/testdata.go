package money

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// TestDataGenerator generates realistic statement lines using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// StatementLine is one generated statement row.
type StatementLine struct {
	Date        time.Time
	Description string
	Amount      *Money // Negative for withdrawals
}

var expenseDescriptions = []string{
	"NTUC FairPrice Jurong",
	"Cold Storage Novena",
	"Grab Ride",
	"GrabFood order",
	"Starbucks Raffles Place",
	"Ya Kun Kaya Toast",
	"Shopee SG",
	"Lazada marketplace",
	"Netflix.com",
	"Singtel bill",
	"SP Group utilities",
	"Guardian pharmacy",
	"Agoda hotel booking",
	"Fitness First gym",
	"EZLink top up",
}

var incomeDescriptions = []string{
	"Salary ACME Pte Ltd",
	"Interest earned",
	"Dividend payout",
	"Refund Shopee",
}

// Lines generates count lines dated within month, oldest first. Roughly
// one line in five is income.
func (g *TestDataGenerator) Lines(currency string, month time.Time, count int) []StatementLine {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	lines := make([]StatementLine, count)
	for i := range lines {
		day := start.AddDate(0, 0, i*28/max(count, 1))
		if g.faker.Number(1, 5) == 1 {
			lines[i] = StatementLine{
				Date:        day,
				Description: incomeDescriptions[g.faker.Number(0, len(incomeDescriptions)-1)],
				Amount:      g.RandomAmount(currency, 10000, 500000),
			}
			continue
		}
		lines[i] = StatementLine{
			Date:        day,
			Description: expenseDescriptions[g.faker.Number(0, len(expenseDescriptions)-1)],
			Amount:      g.RandomAmount(currency, 100, 30000).negate(),
		}
	}
	return lines
}

// RandomAmount generates a random Money value within a cent range.
func (g *TestDataGenerator) RandomAmount(currency string, minCents, maxCents int64) *Money {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	return New(int64(g.faker.Number(int(minCents), int(maxCents))), currency)
}

func (m *Money) negate() *Money {
	if m == nil || m.m == nil {
		return m
	}
	return &Money{m: m.m.Negative()}
}
