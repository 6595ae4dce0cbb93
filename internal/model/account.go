package model

import (
	"strings"
	"time"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeIncome    AccountType = "Income"
	AccountTypeExpense   AccountType = "Expense"
)

// AccountTypes lists every account type in chart order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpense,
}

// ParseAccountType accepts the English names and the Spanish catalog labels
// (Activo, Pasivo, Patrimonio, Ingreso, Gasto), case-insensitively.
func ParseAccountType(s string) (AccountType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asset", "activo":
		return AccountTypeAsset, true
	case "liability", "pasivo":
		return AccountTypeLiability, true
	case "equity", "patrimonio":
		return AccountTypeEquity, true
	case "income", "ingreso":
		return AccountTypeIncome, true
	case "expense", "gasto":
		return AccountTypeExpense, true
	}
	return "", false
}

// DebitNatured reports whether balances of this type grow with debits.
func (t AccountType) DebitNatured() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account is one row of a chart of accounts. An empty ProjectID places the
// account in the global catalog.
type Account struct {
	ID             string
	ProjectID      string
	Code           string
	Name           string
	Type           AccountType
	CashEquivalent bool // receives or pays cash movements (Caja, Banco)
	CreatedAt      time.Time
}

// Global reports whether the account belongs to the global catalog.
func (a Account) Global() bool {
	return a.ProjectID == ""
}

// LooksLikeCash reports whether an account name follows the Caja/Banco naming
// convention. Only used to default CashEquivalent when an account is created
// without an explicit choice.
func LooksLikeCash(name string) bool {
	return strings.Contains(name, "Caja") || strings.Contains(name, "Banco")
}
