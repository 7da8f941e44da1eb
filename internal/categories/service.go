// Package categories manages a user's category set: defaults, CSV files and seeding.
package categories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/extrato-dev/extrato/internal/model"
	"github.com/extrato-dev/extrato/internal/store"
)

// FileName is the categories CSV at the root of a data directory.
const FileName = "categories.csv"

// Creator stores a new category.
type Creator interface {
	CreateCategory(ctx context.Context, c *model.Category) error
}

// Seed creates cats for userID, skipping names the user already has.
// It returns how many were created.
func Seed(ctx context.Context, db Creator, userID int64, cats []model.Category) (int, error) {
	created := 0
	for _, c := range cats {
		c.ID = 0
		c.UserID = userID
		err := db.CreateCategory(ctx, &c)
		if errors.Is(err, store.ErrDuplicateCategory) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seeding categories: %w", err)
		}
		created++
	}
	return created, nil
}

// Load reads a categories CSV file.
func Load(path string) ([]model.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories file: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories file: %w", err)
	}
	return cats, nil
}

// Save writes cats to a categories CSV file, creating its directory.
func Save(path string, cats []model.Category) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, cats); err != nil {
		return fmt.Errorf("writing categories file: %w", err)
	}
	return nil
}
