package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/extrato-dev/extrato/internal/model"
)

// CreateCategory inserts c and sets its ID. A name the user already has
// yields ErrDuplicateCategory.
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_categories (user_id, name, icon, color) VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, c.Icon, c.Color)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
	}
	if err != nil {
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	return nil
}

// ListCategories returns the user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, icon, color FROM transaction_categories WHERE user_id = ? ORDER BY name, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return out, nil
}

// FindCategoryByName returns the user's category whose name equals name
// ignoring case, or ErrNotFound. SQLite's lower() only folds ASCII, so the
// comparison runs in Go.
func (s *Store) FindCategoryByName(ctx context.Context, userID int64, name string) (*model.Category, error) {
	cats, err := s.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.EqualFold(cats[i].Name, name) {
			return &cats[i], nil
		}
	}
	return nil, ErrNotFound
}
