package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/extrato-dev/extrato/internal/model"
)

// MatchMode selects how BulkAssignCategory compares descriptions.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
)

// ExternalIDExists reports whether accountID already holds a transaction with externalID.
func (s *Store) ExternalIDExists(ctx context.Context, accountID int64, externalID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM bank_transactions WHERE bank_account_id = ? AND external_id = ?`,
		accountID, externalID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking external id %q: %w", externalID, err)
	}
	return true, nil
}

// CreateTransaction inserts t and sets its ID. A repeated (account, external id)
// pair yields ErrDuplicateExternalID.
func (s *Store) CreateTransaction(ctx context.Context, t *model.BankTransaction) error {
	created := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_transactions (
			bank_account_id, category_id, category, description, normalized_description,
			amount, type, raw_type, occurred_at, external_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.CategoryID, nullString(t.Category), t.Description, t.NormalizedDescription,
		t.Amount.String(), string(t.Type), t.RawType, formatTime(t.OccurredAt), t.ExternalID,
		formatTime(created))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateExternalID, t.ExternalID)
	}
	if err != nil {
		return fmt.Errorf("inserting transaction %q: %w", t.ExternalID, err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("inserting transaction %q: %w", t.ExternalID, err)
	}
	t.CreatedAt = created
	return nil
}

// ListTransactions returns the account's transactions oldest first.
func (s *Store) ListTransactions(ctx context.Context, accountID int64) ([]model.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bank_account_id, category_id, category, description, normalized_description,
			amount, type, raw_type, occurred_at, external_id, created_at
		FROM bank_transactions
		WHERE bank_account_id = ?
		ORDER BY occurred_at, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []model.BankTransaction
	for rows.Next() {
		var (
			t                 model.BankTransaction
			categoryID        sql.NullInt64
			category          sql.NullString
			typ               string
			occurred, created string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &categoryID, &category, &t.Description,
			&t.NormalizedDescription, &t.Amount, &typ, &t.RawType, &occurred, &t.ExternalID, &created); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if categoryID.Valid {
			id := categoryID.Int64
			t.CategoryID = &id
		}
		t.Category = category.String
		t.Type = model.TransactionType(typ)
		if t.OccurredAt, err = parseTime(occurred); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return out, nil
}

// LatestCategorizedByDescription returns the category of the user's most
// recent categorized transaction whose normalized description equals
// normalized, across all accounts. No match is (nil, nil).
func (s *Store) LatestCategorizedByDescription(ctx context.Context, userID int64, normalized string) (*model.CategorySuggestion, error) {
	var sug model.CategorySuggestion
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name
		FROM bank_transactions t
		JOIN bank_accounts a ON a.id = t.bank_account_id
		JOIN transaction_categories c ON c.id = t.category_id
		WHERE a.user_id = ? AND t.normalized_description = ?
		ORDER BY t.occurred_at DESC, t.id DESC
		LIMIT 1`, userID, normalized).Scan(&sug.ID, &sug.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up categorized history: %w", err)
	}
	return &sug, nil
}

// BulkAssignCategory sets category on every transaction of the user whose
// normalized description matches term. Unless overwrite is set, transactions
// that already have a category are left alone. It returns the number updated.
func (s *Store) BulkAssignCategory(ctx context.Context, userID int64, category model.Category, term string, mode MatchMode, overwrite bool) (int64, error) {
	var cond string
	switch mode {
	case MatchExact:
		cond = `normalized_description = ?`
	case MatchContains:
		cond = `instr(normalized_description, ?) > 0`
	default:
		return 0, fmt.Errorf("unknown match mode %q", mode)
	}
	query := `UPDATE bank_transactions SET category_id = ?, category = ?
		WHERE ` + cond + `
		AND bank_account_id IN (SELECT id FROM bank_accounts WHERE user_id = ?)`
	if !overwrite {
		query += ` AND category_id IS NULL`
	}

	res, err := s.db.ExecContext(ctx, query, category.ID, category.Name, term, userID)
	if err != nil {
		return 0, fmt.Errorf("bulk assigning category %q: %w", category.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk assigning category %q: %w", category.Name, err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
