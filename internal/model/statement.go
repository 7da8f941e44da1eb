package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a statement does not declare CURDEF.
const DefaultCurrency = "BRL"

// DefaultDescription replaces an empty memo.
const DefaultDescription = "Transação OFX"

// StatementAccount describes the account a statement file belongs to.
type StatementAccount struct {
	Number      string // empty when the file has no ACCTID
	Type        AccountType
	BankID      string
	Institution string
	Currency    string
	DisplayName string // "Conta <number>" when Number is set
}

// StatementTransaction is one transaction line of a statement, in file order.
type StatementTransaction struct {
	RawType     string // lower-cased TRNTYPE
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	ExternalID  string // dedup key, never empty
	OccurredAt  time.Time
}

// Statement is the parsed form of one statement file.
type Statement struct {
	Account      StatementAccount
	Transactions []StatementTransaction
}
