// Package categorize suggests a category for a transaction description.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/extrato-dev/extrato/internal/logger"
	"github.com/extrato-dev/extrato/internal/model"
	"github.com/extrato-dev/extrato/internal/store"
)

// Normalize collapses whitespace runs to one space, trims and lower-cases.
// Every description comparison goes through it.
func Normalize(description string) string {
	return strings.ToLower(strings.Join(strings.Fields(description), " "))
}

// Rule proposes a category for a normalized description.
// No match is (nil, nil); errors are storage failures.
type Rule interface {
	Suggest(ctx context.Context, userID int64, normalized string) (*model.CategorySuggestion, error)
}

// CategoryLookup finds a user category by case-insensitive name.
type CategoryLookup interface {
	FindCategoryByName(ctx context.Context, userID int64, name string) (*model.Category, error)
}

// HistoryLookup finds the category of the latest categorized transaction
// with a given normalized description.
type HistoryLookup interface {
	LatestCategorizedByDescription(ctx context.Context, userID int64, normalized string) (*model.CategorySuggestion, error)
}

// Categorizer runs rules in order; the first suggestion wins.
type Categorizer struct {
	rules []Rule
}

// New creates a Categorizer with the given rules.
func New(rules ...Rule) *Categorizer {
	return &Categorizer{rules: rules}
}

// Merchant maps a description prefix to a category name.
type Merchant struct {
	Prefix   string
	Category string
}

// DefaultMerchants are used when the config names none.
var DefaultMerchants = []Merchant{{Prefix: "ifd*", Category: "ifood"}}

// Lookup is the storage a default Categorizer reads.
type Lookup interface {
	CategoryLookup
	HistoryLookup
}

// NewDefault builds the standard chain: one prefix rule per merchant, then
// the exact description history rule.
func NewDefault(db Lookup, merchants []Merchant) *Categorizer {
	rules := make([]Rule, 0, len(merchants)+1)
	for _, m := range merchants {
		rules = append(rules, &MerchantPrefixRule{Prefix: m.Prefix, Category: m.Category, Categories: db})
	}
	rules = append(rules, &ExactDescriptionRule{History: db})
	return New(rules...)
}

// Suggest returns a category for description, or nil when no rule matches.
func (c *Categorizer) Suggest(ctx context.Context, userID int64, description string) (*model.CategorySuggestion, error) {
	normalized := Normalize(description)
	if normalized == "" {
		return nil, nil
	}
	for i, r := range c.rules {
		sug, err := r.Suggest(ctx, userID, normalized)
		if err != nil {
			return nil, fmt.Errorf("categorizing %q: %w", normalized, err)
		}
		if sug != nil {
			log := logger.FromContext(ctx)
			log.Debug().Int("rule", i).Str("description", normalized).Str("category", sug.Name).Msg("category suggested")
			return sug, nil
		}
	}
	return nil, nil
}

// MerchantPrefixRule maps descriptions starting with Prefix to the user's
// category named Category.
type MerchantPrefixRule struct {
	Prefix     string
	Category   string
	Categories CategoryLookup
}

// Suggest implements Rule.
func (r *MerchantPrefixRule) Suggest(ctx context.Context, userID int64, normalized string) (*model.CategorySuggestion, error) {
	if r.Prefix == "" || !strings.HasPrefix(normalized, Normalize(r.Prefix)) {
		return nil, nil
	}
	cat, err := r.Categories.FindCategoryByName(ctx, userID, r.Category)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.CategorySuggestion{ID: cat.ID, Name: cat.Name}, nil
}

// ExactDescriptionRule reuses the category of the user's most recent
// categorized transaction with the same normalized description.
type ExactDescriptionRule struct {
	History HistoryLookup
}

// Suggest implements Rule.
func (r *ExactDescriptionRule) Suggest(ctx context.Context, userID int64, normalized string) (*model.CategorySuggestion, error) {
	return r.History.LatestCategorizedByDescription(ctx, userID, normalized)
}
