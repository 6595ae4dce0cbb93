package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libros-dev/libros/internal/ledger"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/tax"
)

var base = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func mk(id string, kind model.TransactionKind, date, amount string, createdMin int) model.Transaction {
	b := tax.Compute(decimal.RequireFromString(amount))
	t := model.Transaction{
		ID:            id,
		Kind:          kind,
		Date:          day(date),
		Counterparty:  "Contraparte " + id,
		InvoiceNumber: "100-" + id,
		BaseAmount:    b.Base,
		TaxAmount:     b.Tax,
		TotalAmount:   b.Total,
		CreatedAt:     base.Add(time.Duration(createdMin) * time.Minute),
	}
	if kind == model.KindPurchase {
		t.ExpenseCategory = model.CategoryMerchandise
	}
	return t
}

func fixture() ([]model.Transaction, []model.Account) {
	// newest first, as the store returns them
	txns := []model.Transaction{
		mk("7", model.KindSale, "2024-03-20", "10", 7),
		mk("6", model.KindPurchase, "2024-03-18", "20", 6),
		mk("5", model.KindSale, "2024-03-15", "30", 1),
		mk("4", model.KindSale, "2024-03-10", "40", 4),
		mk("3", model.KindPurchase, "2024-03-05", "50", 3),
		mk("2", model.KindSale, "2024-03-02", "100", 2),
	}
	accts := []model.Account{
		{ID: "caja", Code: "1101", Name: "Caja General", Type: model.AccountTypeAsset, CashEquivalent: true},
		{ID: "banco", Code: "1102", Name: "Bancos", Type: model.AccountTypeAsset, CashEquivalent: true},
		{ID: "prov", Code: "2101", Name: "Proveedores", Type: model.AccountTypeLiability},
		{ID: "ventas", Code: "4101", Name: "Ventas", Type: model.AccountTypeIncome},
		{ID: "compras", Code: "5101", Name: "Compras", Type: model.AccountTypeExpense},
	}
	return txns, accts
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestBuildDashboard(t *testing.T) {
	txns, accts := fixture()
	d := BuildDashboard(txns, accts)

	// sales: 10+30+40+100 = 180 base, 23.40 tax
	assertDec(t, "203.40", d.TotalSales)
	assertDec(t, "23.40", d.VATGenerated)
	// purchases: 20+50 = 70 base, 9.10 tax
	assertDec(t, "79.10", d.TotalPurchases)
	assertDec(t, "9.10", d.VATPaid)
	assertDec(t, "124.30", d.NetResult)

	assert.Equal(t, 5, d.AccountCount)
	assert.Equal(t, 6, d.TransactionCount)
	assert.Equal(t, 2, d.AccountsByType[model.AccountTypeAsset])
	assert.Equal(t, 1, d.AccountsByType[model.AccountTypeLiability])
	assert.Equal(t, 0, d.AccountsByType[model.AccountTypeEquity])

	require.Len(t, d.Recent, RecentLimit)
	ids := make([]string, len(d.Recent))
	for i, r := range d.Recent {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"7", "6", "4", "3", "2"}, ids, "ordered by creation time, not date")
	assert.True(t, d.Balanced)
}

func TestBuildDashboardUnbalancedChart(t *testing.T) {
	txns, accts := fixture()
	// Without Ventas the sales debit cash with no matching credit.
	accts = append(accts[:3:3], accts[4])

	d := BuildDashboard(txns, accts)
	assert.False(t, d.Balanced)
	assert.Equal(t, 4, d.AccountCount)
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, nil)
	assertDec(t, "0.00", d.TotalSales)
	assertDec(t, "0.00", d.NetResult)
	assert.Empty(t, d.Recent)
	assert.Equal(t, 0, d.AccountCount)
	assert.True(t, d.Balanced)
}

func TestBooks(t *testing.T) {
	txns, _ := fixture()

	sales := SalesBook(txns)
	assert.Len(t, sales.Transactions, 4)
	assertDec(t, "180.00", sales.Base)
	assertDec(t, "23.40", sales.Tax)
	assertDec(t, "203.40", sales.Total)

	purchases := PurchaseBook(txns)
	assert.Equal(t, model.KindPurchase, purchases.Kind)
	assert.Len(t, purchases.Transactions, 2)
	assertDec(t, "70.00", purchases.Base)
	assertDec(t, "9.10", purchases.Tax)

	cats := purchases.ByCategory()
	assertDec(t, "79.10", cats[model.CategoryMerchandise])
	assert.Empty(t, sales.ByCategory())
}

func TestFilterJournal(t *testing.T) {
	txns, _ := fixture()

	tests := []struct {
		name    string
		filter  JournalFilter
		wantIDs []string
	}{
		{"no filter", JournalFilter{}, []string{"7", "6", "5", "4", "3", "2"}},
		{"sales", JournalFilter{Kind: model.KindSale}, []string{"7", "5", "4", "2"}},
		{"purchases", JournalFilter{Kind: model.KindPurchase}, []string{"6", "3"}},
		{"from inclusive", JournalFilter{From: day("2024-03-15")}, []string{"7", "6", "5"}},
		{"to inclusive", JournalFilter{To: day("2024-03-05")}, []string{"3", "2"}},
		{"range and kind", JournalFilter{Kind: model.KindSale, From: day("2024-03-05"), To: day("2024-03-18")}, []string{"5", "4"}},
		{"empty range", JournalFilter{From: day("2025-01-01")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FilterJournal(txns, tt.filter)
			var ids []string
			for _, tx := range v.Transactions {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), v.Count)
			assertDec(t, "203.40", v.TotalSales)
			assertDec(t, "79.10", v.TotalPurchases)
		})
	}

	assert.False(t, JournalFilter{}.Active())
	assert.True(t, JournalFilter{Kind: model.KindSale}.Active())
}

func TestAccountLedger(t *testing.T) {
	txns, accts := fixture()

	l, ok := AccountLedger(txns, accts, "caja")
	require.True(t, ok)
	require.Len(t, l.Movements, 6)

	// oldest first: +113, -56.50, +45.20, +33.90, -22.60, +11.30
	want := []string{"113.00", "56.50", "101.70", "135.60", "113.00", "124.30"}
	for i, m := range l.Movements {
		assertDec(t, want[i], m.Balance)
	}
	assertDec(t, "124.30", l.Balance)
	assert.Equal(t, ledger.Deudor, l.Nature)

	banco, ok := AccountLedger(txns, accts, "banco")
	require.True(t, ok)
	assert.Empty(t, banco.Movements, "only the first cash account is posted")

	_, ok = AccountLedger(txns, accts, "missing")
	assert.False(t, ok)
}

func TestGeneralLedger(t *testing.T) {
	txns, accts := fixture()
	res := GeneralLedger(txns, accts)
	assert.True(t, res.Balanced())
	assertDec(t, "282.50", res.TotalDebit)
}
