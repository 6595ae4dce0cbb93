package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes the two books.
type TransactionKind string

const (
	KindSale     TransactionKind = "Sale"
	KindPurchase TransactionKind = "Purchase"
)

// ParseKind accepts English and Spanish spellings (venta, compra).
func ParseKind(s string) (TransactionKind, bool) {
	switch s {
	case "Sale", "sale", "venta", "Venta":
		return KindSale, true
	case "Purchase", "purchase", "compra", "Compra":
		return KindPurchase, true
	}
	return "", false
}

// ExpenseCategory classifies a purchase.
type ExpenseCategory string

const (
	CategoryMerchandise      ExpenseCategory = "Merchandise"
	CategoryService          ExpenseCategory = "Service"
	CategoryOperatingExpense ExpenseCategory = "OperatingExpense"
	CategoryFixedAsset       ExpenseCategory = "FixedAsset"
	CategoryOther            ExpenseCategory = "Other"
)

// ExpenseCategories lists the accepted purchase categories.
var ExpenseCategories = []ExpenseCategory{
	CategoryMerchandise,
	CategoryService,
	CategoryOperatingExpense,
	CategoryFixedAsset,
	CategoryOther,
}

// Valid reports whether c is one of ExpenseCategories.
func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseExpenseCategory accepts the English names and the Spanish labels
// of the purchase book (Compra, Servicio, Gasto, Activo, Otro).
func ParseExpenseCategory(s string) (ExpenseCategory, bool) {
	s = strings.TrimSpace(s)
	if c := ExpenseCategory(s); c.Valid() {
		return c, true
	}
	switch strings.ToLower(s) {
	case "compra", "mercaderia", "mercadería":
		return CategoryMerchandise, true
	case "servicio":
		return CategoryService, true
	case "gasto":
		return CategoryOperatingExpense, true
	case "activo":
		return CategoryFixedAsset, true
	case "otro":
		return CategoryOther, true
	}
	return "", false
}

// DateFormat is the calendar date layout used for transaction dates.
const DateFormat = "2006-01-02"

// Transaction is an accepted, tax-enriched sale or purchase.
type Transaction struct {
	ID              string
	Kind            TransactionKind
	Date            time.Time // calendar date, UTC midnight
	Counterparty    string    // client for sales, vendor for purchases
	InvoiceNumber   string
	Description     string
	BaseAmount      decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	ExpenseCategory ExpenseCategory // purchases only
	ProjectID       string
	OwnerID         string
	CreatedAt       time.Time
}

// DateString returns the transaction date as YYYY-MM-DD.
func (t Transaction) DateString() string {
	return t.Date.Format(DateFormat)
}
