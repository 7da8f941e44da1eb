package categories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extrato-dev/extrato/internal/store"
)

func TestSeed(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "extrato.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	n, err := Seed(ctx, s, 1, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	// Seeding again creates nothing.
	n, err = Seed(ctx, s, 1, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Other users get their own set.
	n, err = Seed(ctx, s, 2, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	cats, err := s.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, cats, 7)

	// The default iFood category serves the ifd* merchant rule.
	ifood, err := s.FindCategoryByName(ctx, 1, "ifood")
	require.NoError(t, err)
	assert.Equal(t, "coffee", ifood.Icon)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", FileName)
	require.NoError(t, Save(path, Defaults()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestLoad_Fixture(t *testing.T) {
	got, err := Load("../../testdata/categories.csv")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Ifood", got[0].Name)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
