// Package ledger derives per-account debit and credit movements with running
// balances from a project's sales and purchases. Derivation is a pure
// function of the transactions and the chart of accounts.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/model"
)

// Nature labels the side a balance sits on.
type Nature string

const (
	Deudor   Nature = "Deudor"
	Acreedor Nature = "Acreedor"
)

// NatureOf returns the label of a balance for an account type. Asset and
// Expense balances are Deudor when non-negative; the other types are Deudor
// only when negative.
func NatureOf(t model.AccountType, balance decimal.Decimal) Nature {
	if t.DebitNatured() == !balance.IsNegative() {
		return Deudor
	}
	return Acreedor
}

// AccountSummary is the totals of one account after derivation.
type AccountSummary struct {
	Account     model.Account
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balance     decimal.Decimal
	Nature      Nature
}

// AccountLedger is one account's movements with its totals.
type AccountLedger struct {
	AccountSummary
	Movements []model.Movement
}

// Imbalance is a transaction whose derived debits and credits differ, which
// happens when the chart lacks an account for one side.
type Imbalance struct {
	TransactionID string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// Result is the output of Derive.
type Result struct {
	Movements   []model.Movement
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Accounts    []AccountSummary // in chart order

	// per transaction, in order of first movement
	txnOrder []string
	txnTotal map[string][2]decimal.Decimal
}

// Derive maps transactions onto the chart of accounts. A sale credits its
// total to the first Income account and debits it to the first
// cash-equivalent account; a purchase debits the first Expense account and
// credits the first cash-equivalent account. "First" follows the order of
// accts. A side with no matching account produces no movement. Running
// balances accumulate in the order of txns.
func Derive(txns []model.Transaction, accts []model.Account) Result {
	income, hasIncome := first(accts, func(a model.Account) bool { return a.Type == model.AccountTypeIncome })
	expense, hasExpense := first(accts, func(a model.Account) bool { return a.Type == model.AccountTypeExpense })
	cash, hasCash := first(accts, func(a model.Account) bool { return a.CashEquivalent })

	types := make(map[string]model.AccountType, len(accts))
	for _, a := range accts {
		types[a.ID] = a.Type
	}

	res := Result{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		txnTotal:    make(map[string][2]decimal.Decimal),
	}
	balances := make(map[string]decimal.Decimal, len(accts))
	debits := make(map[string]decimal.Decimal, len(accts))
	credits := make(map[string]decimal.Decimal, len(accts))

	post := func(t model.Transaction, acct model.Account, debit, credit decimal.Decimal, desc string) {
		bal := balances[acct.ID]
		if types[acct.ID].DebitNatured() {
			bal = bal.Add(debit).Sub(credit)
		} else {
			bal = bal.Add(credit).Sub(debit)
		}
		balances[acct.ID] = bal
		debits[acct.ID] = debits[acct.ID].Add(debit)
		credits[acct.ID] = credits[acct.ID].Add(credit)

		res.Movements = append(res.Movements, model.Movement{
			TransactionID: t.ID,
			AccountID:     acct.ID,
			Date:          t.Date,
			Description:   desc,
			Debit:         debit,
			Credit:        credit,
			Balance:       bal,
		})
		res.TotalDebit = res.TotalDebit.Add(debit)
		res.TotalCredit = res.TotalCredit.Add(credit)

		tot, seen := res.txnTotal[t.ID]
		if !seen {
			res.txnOrder = append(res.txnOrder, t.ID)
		}
		res.txnTotal[t.ID] = [2]decimal.Decimal{tot[0].Add(debit), tot[1].Add(credit)}
	}

	for _, t := range txns {
		amount := t.TotalAmount
		switch t.Kind {
		case model.KindSale:
			if hasIncome {
				post(t, income, decimal.Zero, amount, fmt.Sprintf("Venta a %s", t.Counterparty))
			}
			if hasCash {
				post(t, cash, amount, decimal.Zero, fmt.Sprintf("Ingreso por venta %s", t.InvoiceNumber))
			}
		case model.KindPurchase:
			if hasExpense {
				post(t, expense, amount, decimal.Zero, fmt.Sprintf("Compra a %s", t.Counterparty))
			}
			if hasCash {
				post(t, cash, decimal.Zero, amount, fmt.Sprintf("Pago por compra %s", t.InvoiceNumber))
			}
		}
	}

	res.Accounts = make([]AccountSummary, 0, len(accts))
	for _, a := range accts {
		bal := balances[a.ID]
		res.Accounts = append(res.Accounts, AccountSummary{
			Account:     a,
			TotalDebit:  debits[a.ID],
			TotalCredit: credits[a.ID],
			Balance:     bal,
			Nature:      NatureOf(a.Type, bal),
		})
	}
	return res
}

// Summary returns the totals of one account.
func (r Result) Summary(accountID string) (AccountSummary, bool) {
	for _, s := range r.Accounts {
		if s.Account.ID == accountID {
			return s, true
		}
	}
	return AccountSummary{}, false
}

// ForAccount restricts the result to one account. An unknown account yields
// an empty ledger.
func (r Result) ForAccount(accountID string) AccountLedger {
	s, ok := r.Summary(accountID)
	if !ok {
		return AccountLedger{}
	}
	l := AccountLedger{AccountSummary: s}
	for _, m := range r.Movements {
		if m.AccountID == accountID {
			l.Movements = append(l.Movements, m)
		}
	}
	return l
}

// Balanced reports whether total debits equal total credits.
func (r Result) Balanced() bool {
	return r.TotalDebit.Equal(r.TotalCredit)
}

// Imbalances lists the transactions whose derived debits and credits differ.
func (r Result) Imbalances() []Imbalance {
	var out []Imbalance
	for _, txnID := range r.txnOrder {
		tot := r.txnTotal[txnID]
		if !tot[0].Equal(tot[1]) {
			out = append(out, Imbalance{TransactionID: txnID, Debit: tot[0], Credit: tot[1]})
		}
	}
	return out
}

// Chronological returns a copy of txns ordered oldest first: by date, then
// creation time, then ID.
func Chronological(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

func first(accts []model.Account, match func(model.Account) bool) (model.Account, bool) {
	for _, a := range accts {
		if match(a) {
			return a, true
		}
	}
	return model.Account{}, false
}
