package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Valid reports whether t is credit or debit.
func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// BankTransaction is a persisted transaction belonging to a BankAccount.
type BankTransaction struct {
	ID                    int64
	AccountID             int64
	Description           string
	NormalizedDescription string
	Amount                decimal.Decimal // signed as given by the source file
	Type                  TransactionType
	OccurredAt            time.Time
	ExternalID            string
	CategoryID            *int64 // nil = uncategorized
	Category              string
	RawType               string // source type token, e.g. "directdep"
	CreatedAt             time.Time
}

// Balance computes sum(credit amounts) - sum(|debit amounts|).
func Balance(txns []BankTransaction) decimal.Decimal {
	credits := decimal.Zero
	debits := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case TransactionCredit:
			credits = credits.Add(t.Amount)
		case TransactionDebit:
			debits = debits.Add(t.Amount.Abs())
		}
	}
	return credits.Sub(debits)
}
