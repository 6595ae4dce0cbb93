package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/model"
)

// JournalFilter selects transactions for the journal view. An empty Kind
// means both kinds; a zero From or To leaves that side unbounded. Bounds are
// inclusive calendar dates.
type JournalFilter struct {
	Kind model.TransactionKind
	From time.Time
	To   time.Time
}

// Matches reports whether t passes the filter.
func (f JournalFilter) Matches(t model.Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}

// Active reports whether any criterion is set.
func (f JournalFilter) Active() bool {
	return f.Kind != "" || !f.From.IsZero() || !f.To.IsZero()
}

// JournalView is the Libro Diario: the filtered transactions plus the sales
// and purchase totals over the unfiltered set.
type JournalView struct {
	Filter         JournalFilter
	Transactions   []model.Transaction
	Count          int
	TotalSales     decimal.Decimal
	TotalPurchases decimal.Decimal
}

// FilterJournal applies f to txns, keeping their order.
func FilterJournal(txns []model.Transaction, f JournalFilter) JournalView {
	v := JournalView{
		Filter:         f,
		TotalSales:     SalesBook(txns).Total,
		TotalPurchases: PurchaseBook(txns).Total,
	}
	for _, t := range txns {
		if f.Matches(t) {
			v.Transactions = append(v.Transactions, t)
		}
	}
	v.Count = len(v.Transactions)
	return v
}
