package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/model"
)

// accountMetadata is the JSON kept in bank_accounts.metadata.
type accountMetadata struct {
	Source string `json:"source,omitempty"`
	BankID string `json:"bank_id,omitempty"`
}

const accountColumns = `id, user_id, account_number, name, institution, type, currency, balance, metadata, created_at`

// FindOrCreateAccount returns the user's account with a.Number, inserting a
// when none exists. The bool result reports whether the account was created.
// Fields of an existing account are left untouched.
func (s *Store) FindOrCreateAccount(ctx context.Context, a model.BankAccount) (*model.BankAccount, bool, error) {
	meta, err := json.Marshal(accountMetadata{Source: a.Source, BankID: a.BankID})
	if err != nil {
		return nil, false, fmt.Errorf("encoding account metadata: %w", err)
	}

	var (
		created bool
		out     *model.BankAccount
	)
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bank_accounts (user_id, account_number, name, institution, type, currency, balance, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, account_number) DO NOTHING`,
			a.UserID, a.Number, a.Name, a.Institution, string(a.Type), a.Currency,
			decimal.Zero.String(), string(meta), formatTime(s.now()))
		if err != nil {
			return fmt.Errorf("inserting account: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("inserting account: %w", err)
		}
		created = n == 1

		out, err = scanAccount(tx.QueryRowContext(ctx,
			`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = ? AND account_number = ?`,
			a.UserID, a.Number))
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// GetAccountByNumber returns the user's account with number, or ErrNotFound.
func (s *Store) GetAccountByNumber(ctx context.Context, userID int64, number string) (*model.BankAccount, error) {
	return scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = ? AND account_number = ?`,
		userID, number))
}

// ListAccounts returns the user's accounts ordered by name.
func (s *Store) ListAccounts(ctx context.Context, userID int64) ([]model.BankAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var out []model.BankAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return out, nil
}

// RecomputeBalance recalculates the account balance from every stored
// transaction and saves it.
func (s *Store) RecomputeBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	txns, err := s.ListTransactions(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := model.Balance(txns)

	if _, err := s.db.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = ? WHERE id = ?`, balance.String(), accountID); err != nil {
		return decimal.Zero, fmt.Errorf("updating balance: %w", err)
	}
	return balance, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.BankAccount, error) {
	var (
		a       model.BankAccount
		typ     string
		meta    string
		created string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Number, &a.Name, &a.Institution, &typ,
		&a.Currency, &a.Balance, &meta, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	a.Type = model.AccountType(typ)

	var m accountMetadata
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return nil, fmt.Errorf("decoding metadata of account %d: %w", a.ID, err)
	}
	a.Source, a.BankID = m.Source, m.BankID

	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &a, nil
}
