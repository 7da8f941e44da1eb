// Package reconcile applies a parsed statement to stored accounts and transactions.
package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/categorize"
	"github.com/extrato-dev/extrato/internal/extid"
	"github.com/extrato-dev/extrato/internal/importer"
	"github.com/extrato-dev/extrato/internal/logger"
	"github.com/extrato-dev/extrato/internal/model"
	"github.com/extrato-dev/extrato/internal/ofx"
	"github.com/extrato-dev/extrato/internal/store"
)

// ErrInvalidStatement wraps statement validation failures.
var ErrInvalidStatement = errors.New("invalid statement")

// Store is the persistence an import needs.
type Store interface {
	FindOrCreateAccount(ctx context.Context, a model.BankAccount) (*model.BankAccount, bool, error)
	ExternalIDExists(ctx context.Context, accountID int64, externalID string) (bool, error)
	CreateTransaction(ctx context.Context, t *model.BankTransaction) error
	RecomputeBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// Suggester proposes a category for a transaction description.
type Suggester interface {
	Suggest(ctx context.Context, userID int64, description string) (*model.CategorySuggestion, error)
}

// Service imports statement files for a user.
type Service struct {
	parsers     *importer.Registry
	store       Store
	categorizer Suggester
}

// NewService creates a reconcile Service.
func NewService(parsers *importer.Registry, st Store, categorizer Suggester) *Service {
	return &Service{parsers: parsers, store: st, categorizer: categorizer}
}

// Result summarizes one import.
type Result struct {
	Account        *model.BankAccount
	AccountCreated bool
	Created        int
	Skipped        int
	Total          int
}

// Import parses content and applies it to the user's data.
func (s *Service) Import(ctx context.Context, userID int64, fileName string, content []byte) (*Result, error) {
	parser, err := s.parsers.Detect(fileName, content)
	if err != nil {
		return nil, err
	}
	st, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	return s.Apply(ctx, userID, fileName, st)
}

// Apply reconciles an already parsed statement. Transactions whose external
// id the account already holds are skipped; the others are categorized and
// stored. The account balance is then recomputed from all its transactions.
func (s *Service) Apply(ctx context.Context, userID int64, fileName string, st *model.Statement) (*Result, error) {
	if errs := ofx.Validate(st); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %v (%d problems)", ErrInvalidStatement, fileName, errs[0], len(errs))
	}

	log := logger.FromContext(ctx).With().Int64("user_id", userID).Str("file", fileName).Logger()

	acct, created, err := s.store.FindOrCreateAccount(ctx, newAccount(userID, fileName, st.Account))
	if err != nil {
		return nil, fmt.Errorf("finding account: %w", err)
	}
	log = log.With().Str("account", acct.Number).Logger()
	if created {
		log.Info().Str("type", string(acct.Type)).Msg("account created")
	}

	res := &Result{Account: acct, AccountCreated: created, Total: len(st.Transactions)}
	for _, t := range st.Transactions {
		exists, err := s.store.ExternalIDExists(ctx, acct.ID, t.ExternalID)
		if err != nil {
			return nil, err
		}
		if exists {
			log.Debug().Str("external_id", t.ExternalID).Msg("already imported")
			res.Skipped++
			continue
		}

		sug, err := s.categorizer.Suggest(ctx, userID, t.Description)
		if err != nil {
			return nil, err
		}

		txn := &model.BankTransaction{
			AccountID:             acct.ID,
			Description:           t.Description,
			NormalizedDescription: categorize.Normalize(t.Description),
			Amount:                t.Amount,
			Type:                  t.Type,
			OccurredAt:            t.OccurredAt,
			ExternalID:            t.ExternalID,
			RawType:               t.RawType,
		}
		if sug != nil {
			txn.CategoryID = &sug.ID
			txn.Category = sug.Name
		}

		err = s.store.CreateTransaction(ctx, txn)
		if errors.Is(err, store.ErrDuplicateExternalID) {
			// Another import stored it between the check and the insert.
			log.Debug().Str("external_id", t.ExternalID).Msg("already imported")
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Created++
	}

	balance, err := s.store.RecomputeBalance(ctx, acct.ID)
	if err != nil {
		return nil, fmt.Errorf("recomputing balance: %w", err)
	}
	acct.Balance = balance

	log.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("total", res.Total).
		Str("balance", balance.StringFixed(2)).
		Msg("import finished")
	return res, nil
}

// newAccount builds the account to create when the user has none with the
// statement's number. Files without ACCTID get a number derived from the file name.
func newAccount(userID int64, fileName string, sa model.StatementAccount) model.BankAccount {
	number := sa.Number
	if number == "" {
		number = extid.FallbackAccountNumber(fileName)
	}
	name := sa.DisplayName
	if name == "" {
		name = "Conta " + number
	}
	typ := sa.Type
	if !typ.Valid() {
		typ = model.AccountTypeChecking
	}
	currency := sa.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return model.BankAccount{
		UserID:      userID,
		Number:      number,
		Name:        name,
		Institution: sa.Institution,
		Type:        typ,
		Currency:    currency,
		BankID:      sa.BankID,
		Source:      model.SourceImport,
	}
}
