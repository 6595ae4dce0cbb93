package reports

import (
	"github.com/libros-dev/libros/internal/ledger"
	"github.com/libros-dev/libros/internal/model"
)

// AccountLedger returns the Libro Mayor of one account, with movements in
// chronological order. It reports false when the account is not in accts.
func AccountLedger(txns []model.Transaction, accts []model.Account, accountID string) (ledger.AccountLedger, bool) {
	found := false
	for _, a := range accts {
		if a.ID == accountID {
			found = true
			break
		}
	}
	if !found {
		return ledger.AccountLedger{}, false
	}
	res := ledger.Derive(ledger.Chronological(txns), accts)
	return res.ForAccount(accountID), true
}

// GeneralLedger derives every account in chronological order.
func GeneralLedger(txns []model.Transaction, accts []model.Account) ledger.Result {
	return ledger.Derive(ledger.Chronological(txns), accts)
}
