package categorize

import (
	"context"
	"errors"
	"fmt"

	"github.com/extrato-dev/extrato/internal/model"
	"github.com/extrato-dev/extrato/internal/store"
)

// BulkStore is the storage BulkAssign needs.
type BulkStore interface {
	CategoryLookup
	BulkAssignCategory(ctx context.Context, userID int64, category model.Category, term string, mode store.MatchMode, overwrite bool) (int64, error)
}

// BulkRequest selects the transactions to recategorize.
type BulkRequest struct {
	UserID    int64
	Category  string // category name, matched ignoring case
	Term      string
	Match     store.MatchMode
	Overwrite bool // also replace existing categories
}

// BulkAssign sets the named category on every matching transaction of the
// user and returns how many were updated.
func BulkAssign(ctx context.Context, db BulkStore, req BulkRequest) (int64, error) {
	term := Normalize(req.Term)
	if term == "" {
		return 0, errors.New("bulk assign: empty search term")
	}
	match := req.Match
	if match == "" {
		match = store.MatchContains
	}

	cat, err := db.FindCategoryByName(ctx, req.UserID, req.Category)
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("bulk assign: category %q not found", req.Category)
	}
	if err != nil {
		return 0, fmt.Errorf("bulk assign: %w", err)
	}

	n, err := db.BulkAssignCategory(ctx, req.UserID, *cat, term, match, req.Overwrite)
	if err != nil {
		return 0, fmt.Errorf("bulk assign: %w", err)
	}
	return n, nil
}
