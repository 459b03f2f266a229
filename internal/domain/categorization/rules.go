package categorization

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noel97chan-creator/Bank-statement-extractor/internal/domain/statement"
)

// CategoryRules is one category and its patterns, in match order.
type CategoryRules struct {
	Category statement.Category `yaml:"category"`
	Patterns []string           `yaml:"patterns"`
}

// RuleSet is the ordered rule table. Order is significant: the first
// matching category, then the first matching pattern, wins.
type RuleSet []CategoryRules

// DefaultRules is the built-in table for Singapore statements.
func DefaultRules() RuleSet {
	return RuleSet{
		{FoodDining, []string{
			`restaurant|cafe|coffee|starbucks|mcdonald|kfc|food|dining|pizza|sushi|burger|grab\s*food|deliveroo|foodpanda`,
			`hawker|kopitiam|toast\s*box|bread\s*talk|ya\s*kun|old\s*chang\s*kee`,
		}},
		{Groceries, []string{
			`ntuc|fairprice|cold\s*storage|giant|sheng\s*siong|market|supermarket|grocery|fresh|mart`,
		}},
		{Transport, []string{
			`grab|gojek|comfort|taxi|mrt|lta|ezlink|simplygo|parking|petrol|shell|esso|caltex|spc|transit|bus`,
			`smrt|grab|transport|uber|diesel|fuel`,
		}},
		{Shopping, []string{
			`lazada|shopee|amazon|taobao|qoo10|carousell|uniqlo|h&m|zara|nike|adidas|shopping|retail`,
			`mall|store|boutique|fashion|shoes|clothing|electronics`,
		}},
		{Entertainment, []string{
			`netflix|spotify|disney|hbo|youtube|cinema|movie|cathay|gv|shaw|concert|ticket|game|steam|playstation`,
			`entertainment|show|theater|ktv|karaoke`,
		}},
		{BillsUtilities, []string{
			`sp\s*group|sp\s*services|utility|electricity|water|gas|phone|mobile|singtel|starhub|m1|internet|broadband`,
			`bill|payment|subscription|membership`,
		}},
		{Healthcare, []string{
			`clinic|hospital|doctor|dental|pharmacy|guardian|watsons|medical|health|insurance|aia|prudential`,
			`medicine|drug|prescription`,
		}},
		{Income, []string{
			`salary|payroll|income|dividend|interest|bonus|commission|refund|reimbursement|deposit`,
			`transfer\s*in|credit|payment\s*received`,
		}},
		{Transfer, []string{
			`transfer|paynow|paylah|fast\s*payment|giro|interbank|withdrawal\s*atm`,
			`atm\s*withdrawal|cash\s*withdrawal`,
		}},
		{Investment, []string{
			`investment|stock|share|bond|fund|etf|trading|broker|dbs\s*vickers|poems|tiger|moomoo`,
			`crypto|bitcoin|cryptocurrency`,
		}},
		{Insurance, []string{
			`insurance|aia|prudential|great\s*eastern|aviva|manulife|tokio\s*marine|premium|policy`,
		}},
		{Education, []string{
			`school|university|college|tuition|course|udemy|coursera|education|training|book|bookstore`,
		}},
		{Travel, []string{
			`hotel|airbnb|agoda|booking\.com|flight|airline|scoot|jetstar|sia|travel|tour|vacation`,
			`airport|baggage|immigration`,
		}},
		{PersonalCare, []string{
			`salon|spa|barber|haircut|massage|gym|fitness|yoga|beauty|cosmetic|skincare`,
		}},
		{LoanPayment, []string{
			`loan|mortgage|instalment|installment|repayment|emi|housing\s*loan|car\s*loan`,
		}},
	}
}

var ErrInvalidRules = errors.New("invalid rule table")

type ruleFile struct {
	Categories []CategoryRules `yaml:"categories"`
}

// ParseRules reads a YAML rule table:
//
//	categories:
//	  - category: GROCERIES
//	    patterns: ['ntuc|fairprice']
//
// Categories may be given as codes or display names. OTHER cannot carry
// patterns; it is the fallback.
func ParseRules(data []byte) (RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidRules)
	}

	rules := make(RuleSet, 0, len(f.Categories))
	seen := make(map[statement.Category]bool)
	for i, c := range f.Categories {
		cat, err := ParseCategory(string(c.Category))
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidRules, i, err)
		}
		if cat == Other {
			return nil, fmt.Errorf("%w: entry %d: %s is the fallback and takes no patterns", ErrInvalidRules, i, Other)
		}
		if seen[cat] {
			return nil, fmt.Errorf("%w: entry %d: %s listed twice", ErrInvalidRules, i, cat)
		}
		if len(c.Patterns) == 0 {
			return nil, fmt.Errorf("%w: entry %d: %s has no patterns", ErrInvalidRules, i, cat)
		}
		seen[cat] = true
		rules = append(rules, CategoryRules{Category: cat, Patterns: c.Patterns})
	}
	return rules, nil
}

// LoadRules reads a YAML rule table from disk.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// MarshalRules renders a rule table in the format ParseRules reads.
func MarshalRules(rules RuleSet) ([]byte, error) {
	return yaml.Marshal(ruleFile{Categories: rules})
}
