package reports

import (
	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/model"
)

// Book is one kind's transactions with the sums of their amounts. For the
// purchase book Tax is the crédito fiscal; for the sales book it is the
// débito fiscal.
type Book struct {
	Kind         model.TransactionKind
	Transactions []model.Transaction
	Base         decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// SalesBook returns the Libro de Ventas.
func SalesBook(txns []model.Transaction) Book {
	return book(model.KindSale, txns)
}

// PurchaseBook returns the Libro de Compras.
func PurchaseBook(txns []model.Transaction) Book {
	return book(model.KindPurchase, txns)
}

func book(kind model.TransactionKind, txns []model.Transaction) Book {
	b := Book{Kind: kind, Base: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, t := range txns {
		if t.Kind != kind {
			continue
		}
		b.Transactions = append(b.Transactions, t)
		b.Base = b.Base.Add(t.BaseAmount)
		b.Tax = b.Tax.Add(t.TaxAmount)
		b.Total = b.Total.Add(t.TotalAmount)
	}
	return b
}

// ByCategory sums purchase totals per expense category.
func (b Book) ByCategory() map[model.ExpenseCategory]decimal.Decimal {
	out := make(map[model.ExpenseCategory]decimal.Decimal)
	for _, t := range b.Transactions {
		if t.ExpenseCategory == "" {
			continue
		}
		out[t.ExpenseCategory] = out[t.ExpenseCategory].Add(t.TotalAmount)
	}
	return out
}
