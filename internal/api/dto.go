package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/currency"
	"github.com/libros-dev/libros/internal/ledger"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/reports"
	"github.com/libros-dev/libros/internal/tax"
)

func amount(d decimal.Decimal) string {
	return d.StringFixed(tax.Places)
}

// Project is the JSON form of a project.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

func toProject(p model.Project) Project {
	return Project{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		LastModified: p.LastModified,
	}
}

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	SeedChart   bool   `json:"seedChart"`
}

// Account is the JSON form of an account.
type Account struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CashEquivalent bool   `json:"cashEquivalent"`
	Global         bool   `json:"global"`
}

func toAccount(a model.Account) Account {
	return Account{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           string(a.Type),
		CashEquivalent: a.CashEquivalent,
		Global:         a.Global(),
	}
}

// CreateAccountRequest is the body of POST /accounts.
type CreateAccountRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CashEquivalent *bool  `json:"cashEquivalent"`
}

// Transaction is the JSON form of a sale or purchase.
type Transaction struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Date            string    `json:"date"`
	Counterparty    string    `json:"counterparty"`
	InvoiceNumber   string    `json:"invoiceNumber"`
	Description     string    `json:"description,omitempty"`
	BaseAmount      string    `json:"baseAmount"`
	TaxAmount       string    `json:"taxAmount"`
	TotalAmount     string    `json:"totalAmount"`
	ExpenseCategory string    `json:"expenseCategory,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toTransaction(t model.Transaction) Transaction {
	return Transaction{
		ID:              t.ID,
		Kind:            string(t.Kind),
		Date:            t.DateString(),
		Counterparty:    t.Counterparty,
		InvoiceNumber:   t.InvoiceNumber,
		Description:     t.Description,
		BaseAmount:      amount(t.BaseAmount),
		TaxAmount:       amount(t.TaxAmount),
		TotalAmount:     amount(t.TotalAmount),
		ExpenseCategory: string(t.ExpenseCategory),
		CreatedAt:       t.CreatedAt,
	}
}

func toTransactions(txns []model.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransaction(t))
	}
	return out
}

// TransactionRequest is the body of POST and PUT /transactions. Amounts are
// strings to keep their exact decimal form.
type TransactionRequest struct {
	Kind            string `json:"kind"`
	Date            string `json:"date"`
	Counterparty    string `json:"counterparty"`
	InvoiceNumber   string `json:"invoiceNumber"`
	Description     string `json:"description"`
	BaseAmount      string `json:"baseAmount"`
	ExpenseCategory string `json:"expenseCategory"`
}

// Dashboard is the JSON form of the project overview.
type Dashboard struct {
	TotalSales       string         `json:"totalSales"`
	TotalPurchases   string         `json:"totalPurchases"`
	NetResult        string         `json:"netResult"`
	NetResultDisplay string         `json:"netResultDisplay"`
	VATGenerated     string         `json:"vatGenerated"`
	VATPaid          string         `json:"vatPaid"`
	AccountsByType   map[string]int `json:"accountsByType"`
	AccountCount     int            `json:"accountCount"`
	TransactionCount int            `json:"transactionCount"`
	Recent           []Transaction  `json:"recent"`
	Balanced         bool           `json:"balanced"`
}

func toDashboard(d reports.Dashboard) Dashboard {
	byType := make(map[string]int, len(d.AccountsByType))
	for t, n := range d.AccountsByType {
		byType[string(t)] = n
	}
	return Dashboard{
		TotalSales:       amount(d.TotalSales),
		TotalPurchases:   amount(d.TotalPurchases),
		NetResult:        amount(d.NetResult),
		NetResultDisplay: currency.Format(d.NetResult),
		VATGenerated:     amount(d.VATGenerated),
		VATPaid:          amount(d.VATPaid),
		AccountsByType:   byType,
		AccountCount:     d.AccountCount,
		TransactionCount: d.TransactionCount,
		Recent:           toTransactions(d.Recent),
		Balanced:         d.Balanced,
	}
}

// Journal is the JSON form of the Libro Diario.
type Journal struct {
	Transactions   []Transaction `json:"transactions"`
	Count          int           `json:"count"`
	TotalSales     string        `json:"totalSales"`
	TotalPurchases string        `json:"totalPurchases"`
}

func toJournal(v reports.JournalView) Journal {
	return Journal{
		Transactions:   toTransactions(v.Transactions),
		Count:          v.Count,
		TotalSales:     amount(v.TotalSales),
		TotalPurchases: amount(v.TotalPurchases),
	}
}

// Book is the JSON form of the sales or purchase book.
type Book struct {
	Kind         string        `json:"kind"`
	Transactions []Transaction `json:"transactions"`
	Base         string        `json:"base"`
	Tax          string        `json:"tax"`
	Total        string        `json:"total"`
}

func toBook(b reports.Book) Book {
	return Book{
		Kind:         string(b.Kind),
		Transactions: toTransactions(b.Transactions),
		Base:         amount(b.Base),
		Tax:          amount(b.Tax),
		Total:        amount(b.Total),
	}
}

// Movement is one line of an account ledger.
type Movement struct {
	TransactionID string `json:"transactionId"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	Balance       string `json:"balance"`
}

// AccountLedger is the JSON form of the Libro Mayor of one account.
type AccountLedger struct {
	Account     Account    `json:"account"`
	Movements   []Movement `json:"movements"`
	TotalDebit  string     `json:"totalDebit"`
	TotalCredit string     `json:"totalCredit"`
	Balance     string     `json:"balance"`
	Nature      string     `json:"nature"`
}

func toAccountLedger(l ledger.AccountLedger) AccountLedger {
	out := AccountLedger{
		Account:     toAccount(l.Account),
		Movements:   make([]Movement, 0, len(l.Movements)),
		TotalDebit:  amount(l.TotalDebit),
		TotalCredit: amount(l.TotalCredit),
		Balance:     amount(l.Balance),
		Nature:      string(l.Nature),
	}
	for _, m := range l.Movements {
		out.Movements = append(out.Movements, Movement{
			TransactionID: m.TransactionID,
			Date:          m.Date.Format(model.DateFormat),
			Description:   m.Description,
			Debit:         amount(m.Debit),
			Credit:        amount(m.Credit),
			Balance:       amount(m.Balance),
		})
	}
	return out
}
