package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		raw   string
		want  AccountType
		known bool
	}{
		{"CHECKING", AccountTypeChecking, true},
		{" savings ", AccountTypeSavings, true},
		{"MONEYMRKT", AccountTypeSavings, true},
		{"CREDITLINE", AccountTypeCredit, true},
		{"creditcard", AccountTypeCredit, true},
		{"investment", AccountTypeInvestment, true},
		{"", AccountTypeChecking, false},
		{"brokerage", AccountTypeChecking, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseAccountType(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestAccountTypeLabels(t *testing.T) {
	assert.Equal(t, "Conta corrente", AccountTypeChecking.Label())
	assert.Equal(t, "Cartão de crédito", AccountTypeCredit.Label())
	assert.Equal(t, "mystery", AccountType("mystery").Label())
	assert.False(t, AccountType("mystery").Valid())

	opts := AccountTypeOptions()
	assert.Len(t, opts, 5)
	opts[0].Label = "changed"
	assert.Equal(t, "Conta corrente", AccountTypeOptions()[0].Label, "options are returned as a copy")
}

func TestBalance(t *testing.T) {
	txns := []BankTransaction{
		{Type: TransactionCredit, Amount: decimal.RequireFromString("1500.00")},
		{Type: TransactionDebit, Amount: decimal.RequireFromString("-245.90")},
		{Type: TransactionDebit, Amount: decimal.RequireFromString("10")},
		// A negative credit (e.g. OTHER) still adds its signed amount.
		{Type: TransactionCredit, Amount: decimal.RequireFromString("-46.00")},
	}
	assert.Equal(t, "1198.10", Balance(txns).StringFixed(2))
	assert.True(t, Balance(nil).IsZero())
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, TransactionCredit.Valid())
	assert.True(t, TransactionDebit.Valid())
	assert.False(t, TransactionType("transfer").Valid())
}
