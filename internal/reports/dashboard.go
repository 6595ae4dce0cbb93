package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/model"
)

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 5

// Dashboard is the financial overview of a project.
type Dashboard struct {
	TotalSales       decimal.Decimal
	TotalPurchases   decimal.Decimal
	NetResult        decimal.Decimal // sales minus purchases
	VATGenerated     decimal.Decimal // tax on sales
	VATPaid          decimal.Decimal // tax on purchases
	AccountsByType   map[model.AccountType]int
	AccountCount     int
	TransactionCount int
	Recent           []model.Transaction // newest first by creation time
	// Balanced is false when the chart lacks an account a transaction posts
	// to, so the derived debits and credits differ.
	Balanced bool
}

// BuildDashboard summarizes transactions and accounts.
func BuildDashboard(txns []model.Transaction, accts []model.Account) Dashboard {
	sales := SalesBook(txns)
	purchases := PurchaseBook(txns)

	return Dashboard{
		TotalSales:       sales.Total,
		TotalPurchases:   purchases.Total,
		NetResult:        sales.Total.Sub(purchases.Total),
		VATGenerated:     sales.Tax,
		VATPaid:          purchases.Tax,
		AccountsByType:   accounts.NewService(accts).CountByType(),
		AccountCount:     len(accts),
		TransactionCount: len(txns),
		Recent:           recent(txns, RecentLimit),
		Balanced:         GeneralLedger(txns, accts).Balanced(),
	}
}

func recent(txns []model.Transaction, n int) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
