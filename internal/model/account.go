package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies bank accounts.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeBusiness   AccountType = "business"
)

// AccountTypeOption pairs an account type with its display label.
type AccountTypeOption struct {
	Value AccountType
	Label string
}

var accountTypeOptions = []AccountTypeOption{
	{Value: AccountTypeChecking, Label: "Conta corrente"},
	{Value: AccountTypeSavings, Label: "Conta poupança"},
	{Value: AccountTypeCredit, Label: "Cartão de crédito"},
	{Value: AccountTypeInvestment, Label: "Investimentos"},
	{Value: AccountTypeBusiness, Label: "Conta empresarial"},
}

// OFX ACCTTYPE tokens that do not share a name with an AccountType.
var ofxAccountTypeAliases = map[string]AccountType{
	"creditline": AccountTypeCredit,
	"creditcard": AccountTypeCredit,
	"moneymrkt":  AccountTypeSavings,
}

// AccountTypeOptions returns every account type in display order.
func AccountTypeOptions() []AccountTypeOption {
	out := make([]AccountTypeOption, len(accountTypeOptions))
	copy(out, accountTypeOptions)
	return out
}

// Label returns the display label, or the raw value for unknown types.
func (t AccountType) Label() string {
	for _, o := range accountTypeOptions {
		if o.Value == t {
			return o.Label
		}
	}
	return string(t)
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	for _, o := range accountTypeOptions {
		if o.Value == t {
			return true
		}
	}
	return false
}

// ParseAccountType maps a raw token (e.g. OFX ACCTTYPE) onto an AccountType.
// The second result is false when the token is unknown, in which case checking is returned.
func ParseAccountType(raw string) (AccountType, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if t := AccountType(key); t.Valid() {
		return t, true
	}
	if t, ok := ofxAccountTypeAliases[key]; ok {
		return t, true
	}
	return AccountTypeChecking, false
}

// SourceImport marks an account created by a statement import.
const SourceImport = "import"

// BankAccount is a persisted account owned by one user.
type BankAccount struct {
	ID          int64
	UserID      int64
	Number      string
	Name        string
	Institution string
	Type        AccountType
	Currency    string
	Balance     decimal.Decimal
	BankID      string
	Source      string
	CreatedAt   time.Time
}
