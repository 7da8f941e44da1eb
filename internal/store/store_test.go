package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extrato-dev/extrato/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "extrato.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAccount(t *testing.T, s *Store, userID int64, number string) *model.BankAccount {
	t.Helper()
	a, _, err := s.FindOrCreateAccount(context.Background(), model.BankAccount{
		UserID:   userID,
		Number:   number,
		Name:     "Conta " + number,
		Type:     model.AccountTypeChecking,
		Currency: "BRL",
	})
	require.NoError(t, err)
	return a
}

func testTxn(accountID int64, extID, desc, amount string, typ model.TransactionType, at time.Time) *model.BankTransaction {
	return &model.BankTransaction{
		AccountID:             accountID,
		Description:           desc,
		NormalizedDescription: desc,
		Amount:                decimal.RequireFromString(amount),
		Type:                  typ,
		RawType:               string(typ),
		OccurredAt:            at,
		ExternalID:            extID,
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrato.db")
	s, err := Open(path)
	require.NoError(t, err)
	testAccount(t, s, 1, "000111")
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	accts, err := s.ListAccounts(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, accts, 1)
}

func TestFindOrCreateAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := model.BankAccount{
		UserID:      7,
		Number:      "000111",
		Name:        "Conta 000111",
		Institution: "Banco Codex",
		Type:        model.AccountTypeSavings,
		Currency:    "BRL",
		BankID:      "123",
		Source:      model.SourceImport,
	}
	a, created, err := s.FindOrCreateAccount(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, a.ID)
	assert.Equal(t, "Banco Codex", a.Institution)
	assert.Equal(t, model.AccountTypeSavings, a.Type)
	assert.Equal(t, "123", a.BankID)
	assert.Equal(t, model.SourceImport, a.Source)
	assert.True(t, a.Balance.IsZero())

	in.Institution = "Outro"
	again, created, err := s.FindOrCreateAccount(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)
	assert.Equal(t, "Banco Codex", again.Institution, "existing account is not updated")

	// Same number, different user.
	in.UserID = 8
	other, created, err := s.FindOrCreateAccount(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a.ID, other.ID)
}

func TestGetAccountByNumber_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAccountByNumber(context.Background(), 1, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTransaction_DuplicateExternalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := testAccount(t, s, 1, "000111")
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	first := testTxn(a.ID, "ABC123", "deposito", "1500.00", model.TransactionCredit, at)
	require.NoError(t, s.CreateTransaction(ctx, first))
	assert.NotZero(t, first.ID)

	exists, err := s.ExternalIDExists(ctx, a.ID, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	err = s.CreateTransaction(ctx, testTxn(a.ID, "ABC123", "deposito", "1500.00", model.TransactionCredit, at))
	assert.ErrorIs(t, err, ErrDuplicateExternalID)

	// The same external id on another account is fine.
	b := testAccount(t, s, 1, "000222")
	require.NoError(t, s.CreateTransaction(ctx, testTxn(b.ID, "ABC123", "deposito", "1500.00", model.TransactionCredit, at)))

	exists, err = s.ExternalIDExists(ctx, a.ID, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListTransactions_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := testAccount(t, s, 1, "000111")
	cat := &model.Category{UserID: 1, Name: "Mercado"}
	require.NoError(t, s.CreateCategory(ctx, cat))

	late := testTxn(a.ID, "2", "padaria", "-12.34", model.TransactionDebit, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	late.CategoryID = &cat.ID
	late.Category = cat.Name
	early := testTxn(a.ID, "1", "salario", "1500", model.TransactionCredit,
		time.Date(2025, 1, 1, 9, 30, 0, 0, time.FixedZone("BRT", -3*60*60)))
	require.NoError(t, s.CreateTransaction(ctx, late))
	require.NoError(t, s.CreateTransaction(ctx, early))

	txns, err := s.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "1", txns[0].ExternalID)
	assert.True(t, early.OccurredAt.Equal(txns[0].OccurredAt))
	assert.Nil(t, txns[0].CategoryID)
	assert.Empty(t, txns[0].Category)

	assert.Equal(t, "2", txns[1].ExternalID)
	assert.Equal(t, "-12.34", txns[1].Amount.String())
	assert.Equal(t, model.TransactionDebit, txns[1].Type)
	require.NotNil(t, txns[1].CategoryID)
	assert.Equal(t, cat.ID, *txns[1].CategoryID)
	assert.Equal(t, "Mercado", txns[1].Category)
}

func TestRecomputeBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := testAccount(t, s, 1, "000111")
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, tx := range []*model.BankTransaction{
		testTxn(a.ID, "1", "salario", "1500.00", model.TransactionCredit, at),
		testTxn(a.ID, "2", "cartao", "-245.90", model.TransactionDebit, at),
		testTxn(a.ID, "3", "tarifa", "10.00", model.TransactionDebit, at),
		testTxn(a.ID, "4", "estorno", "-5.00", model.TransactionCredit, at),
	} {
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}

	bal, err := s.RecomputeBalance(ctx, a.ID)
	require.NoError(t, err)
	// 1500 + (-5) - 245.90 - 10
	assert.Equal(t, "1239.10", bal.StringFixed(2))

	stored, err := s.GetAccountByNumber(ctx, 1, "000111")
	require.NoError(t, err)
	assert.True(t, bal.Equal(stored.Balance))
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, &model.Category{UserID: 1, Name: "Saúde & Bem-estar", Icon: "dumbbell", Color: "#ec4899"}))
	require.NoError(t, s.CreateCategory(ctx, &model.Category{UserID: 1, Name: "Ifood"}))
	require.NoError(t, s.CreateCategory(ctx, &model.Category{UserID: 2, Name: "Ifood"}))

	err := s.CreateCategory(ctx, &model.Category{UserID: 1, Name: "Ifood"})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	cats, err := s.ListCategories(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Ifood", cats[0].Name)

	found, err := s.FindCategoryByName(ctx, 1, "ifood")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.UserID)

	found, err = s.FindCategoryByName(ctx, 1, "SAÚDE & BEM-ESTAR")
	require.NoError(t, err)
	assert.Equal(t, "dumbbell", found.Icon)

	_, err = s.FindCategoryByName(ctx, 3, "ifood")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestCategorizedByDescription(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := testAccount(t, s, 1, "A")
	b := testAccount(t, s, 1, "B")
	foreign := testAccount(t, s, 2, "A")

	old := &model.Category{UserID: 1, Name: "Antiga"}
	recent := &model.Category{UserID: 1, Name: "Recente"}
	theirs := &model.Category{UserID: 2, Name: "Deles"}
	for _, c := range []*model.Category{old, recent, theirs} {
		require.NoError(t, s.CreateCategory(ctx, c))
	}

	add := func(acct int64, ext string, cat *model.Category, at time.Time) {
		tx := testTxn(acct, ext, "pagamento cartão", "-1", model.TransactionDebit, at)
		if cat != nil {
			tx.CategoryID = &cat.ID
			tx.Category = cat.Name
		}
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	add(a.ID, "1", old, jan)
	add(b.ID, "2", recent, jan.AddDate(0, 1, 0))
	add(a.ID, "3", nil, jan.AddDate(0, 2, 0))
	add(foreign.ID, "4", theirs, jan.AddDate(0, 3, 0))

	sug, err := s.LatestCategorizedByDescription(ctx, 1, "pagamento cartão")
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, recent.ID, sug.ID)
	assert.Equal(t, "Recente", sug.Name)

	sug, err = s.LatestCategorizedByDescription(ctx, 1, "outra coisa")
	require.NoError(t, err)
	assert.Nil(t, sug)
}

func TestLatestCategorizedByDescription_TieBreaksOnID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := testAccount(t, s, 1, "A")
	first := &model.Category{UserID: 1, Name: "Primeira"}
	second := &model.Category{UserID: 1, Name: "Segunda"}
	require.NoError(t, s.CreateCategory(ctx, first))
	require.NoError(t, s.CreateCategory(ctx, second))

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []*model.Category{first, second} {
		tx := testTxn(a.ID, string(rune('a'+i)), "mesmo dia", "-1", model.TransactionDebit, at)
		tx.CategoryID = &c.ID
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}

	sug, err := s.LatestCategorizedByDescription(ctx, 1, "mesmo dia")
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, second.ID, sug.ID)
}

func TestBulkAssignCategory(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		term      string
		mode      MatchMode
		overwrite bool
		want      int64
	}{
		{"exact skips categorized", "uber trip", MatchExact, false, 1},
		{"exact overwrite", "uber trip", MatchExact, true, 2},
		{"contains", "uber", MatchContains, false, 2},
		{"contains overwrite", "uber", MatchContains, true, 3},
		{"no match", "taxi", MatchContains, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			a := testAccount(t, s, 1, "A")
			foreign := testAccount(t, s, 2, "A")
			other := &model.Category{UserID: 1, Name: "Outros"}
			transport := &model.Category{UserID: 1, Name: "Transporte"}
			require.NoError(t, s.CreateCategory(ctx, other))
			require.NoError(t, s.CreateCategory(ctx, transport))

			categorized := testTxn(a.ID, "1", "uber trip", "-10", model.TransactionDebit, at)
			categorized.CategoryID = &other.ID
			require.NoError(t, s.CreateTransaction(ctx, categorized))
			require.NoError(t, s.CreateTransaction(ctx, testTxn(a.ID, "2", "uber trip", "-11", model.TransactionDebit, at)))
			require.NoError(t, s.CreateTransaction(ctx, testTxn(a.ID, "3", "uber eats", "-12", model.TransactionDebit, at)))
			require.NoError(t, s.CreateTransaction(ctx, testTxn(foreign.ID, "4", "uber trip", "-13", model.TransactionDebit, at)))

			n, err := s.BulkAssignCategory(ctx, 1, *transport, tt.term, tt.mode, tt.overwrite)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)

			theirs, err := s.ListTransactions(ctx, foreign.ID)
			require.NoError(t, err)
			assert.Nil(t, theirs[0].CategoryID, "other users are never touched")
		})
	}
}

func TestBulkAssignCategory_UnknownMode(t *testing.T) {
	s := newTestStore(t)
	_, err := s.BulkAssignCategory(context.Background(), 1, model.Category{ID: 1}, "x", "fuzzy", false)
	assert.Error(t, err)
}
