package journal

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/tax"
)

// Field names used as keys in Errors.
const (
	FieldKind            = "kind"
	FieldDate            = "date"
	FieldCounterparty    = "counterparty"
	FieldInvoiceNumber   = "invoiceNumber"
	FieldBaseAmount      = "baseAmount"
	FieldDescription     = "description"
	FieldExpenseCategory = "expenseCategory"
)

var fieldOrder = []string{
	FieldKind,
	FieldDate,
	FieldCounterparty,
	FieldInvoiceNumber,
	FieldBaseAmount,
	FieldDescription,
	FieldExpenseCategory,
}

const (
	minCounterpartyLen = 2
	maxCounterpartyLen = 100
	minInvoiceLen      = 3
	maxInvoiceLen      = 20
	maxDescriptionLen  = 500
)

var (
	invoicePattern = regexp.MustCompile(`^[0-9-]+$`)
	maxBaseAmount  = decimal.NewFromInt(1_000_000)
)

// DefaultMinPurchaseDate is the earliest date accepted for purchases.
var DefaultMinPurchaseDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Candidate is a transaction as submitted, before validation and tax
// enrichment. Fields hold raw user input.
type Candidate struct {
	Kind            model.TransactionKind
	Date            string
	Counterparty    string
	InvoiceNumber   string
	Description     string
	BaseAmount      string
	ExpenseCategory string

	// ExcludeID names the transaction being edited, so it does not collide
	// with its own invoice number.
	ExcludeID string
}

// CandidateFrom returns the Candidate that would reproduce t.
func CandidateFrom(t model.Transaction) Candidate {
	return Candidate{
		Kind:            t.Kind,
		Date:            t.DateString(),
		Counterparty:    t.Counterparty,
		InvoiceNumber:   t.InvoiceNumber,
		Description:     t.Description,
		BaseAmount:      t.BaseAmount.StringFixed(tax.Places),
		ExpenseCategory: string(t.ExpenseCategory),
		ExcludeID:       t.ID,
	}
}

// Rules tunes the validation that is configurable.
type Rules struct {
	// Today is the reference date for the future-date check. Zero means the
	// current date.
	Today time.Time

	// MinPurchaseDate is the earliest accepted purchase date. Zero means
	// DefaultMinPurchaseDate.
	MinPurchaseDate time.Time

	// UniqueSaleInvoices extends the invoice uniqueness check to sales.
	UniqueSaleInvoices bool
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{MinPurchaseDate: DefaultMinPurchaseDate}
}

func (r Rules) today() time.Time {
	now := r.Today
	if now.IsZero() {
		now = time.Now()
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r Rules) minPurchaseDate() time.Time {
	if r.MinPurchaseDate.IsZero() {
		return DefaultMinPurchaseDate
	}
	return r.MinPurchaseDate
}

// Errors maps a field name to the violation found on it. An empty Errors
// means the candidate is valid.
type Errors map[string]string

// Error joins every violation into one message, fields in a stable order.
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the fields with violations in display order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, f := range fieldOrder {
		if _, ok := e[f]; ok {
			fields = append(fields, f)
		}
	}
	var extra []string
	for f := range e {
		if !knownField(f) {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	return append(fields, extra...)
}

// Err returns e as an error, or nil when there are no violations.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func knownField(f string) bool {
	for _, k := range fieldOrder {
		if f == k {
			return true
		}
	}
	return false
}

// Validate checks a candidate against the field rules and against the
// snapshot of the project's transactions already loaded. It evaluates every
// field and never stops at the first violation.
func Validate(c Candidate, snapshot []model.Transaction, rules Rules) Errors {
	errs := make(Errors)

	if c.Kind != model.KindSale && c.Kind != model.KindPurchase {
		errs[FieldKind] = fmt.Sprintf("unknown transaction kind %q", c.Kind)
	}

	validateDate(c, rules, errs)

	name := strings.TrimSpace(c.Counterparty)
	if n := utf8.RuneCountInString(name); n < minCounterpartyLen || n > maxCounterpartyLen {
		errs[FieldCounterparty] = fmt.Sprintf("must be between %d and %d characters", minCounterpartyLen, maxCounterpartyLen)
	}

	validateInvoice(c, snapshot, rules, errs)

	if msg := checkBaseAmount(c.BaseAmount); msg != "" {
		errs[FieldBaseAmount] = msg
	}

	if utf8.RuneCountInString(c.Description) > maxDescriptionLen {
		errs[FieldDescription] = fmt.Sprintf("must be at most %d characters", maxDescriptionLen)
	}

	if strings.TrimSpace(c.ExpenseCategory) != "" {
		switch c.Kind {
		case model.KindPurchase:
			if _, ok := model.ParseExpenseCategory(c.ExpenseCategory); !ok {
				errs[FieldExpenseCategory] = fmt.Sprintf("unknown expense category %q", c.ExpenseCategory)
			}
		case model.KindSale:
			errs[FieldExpenseCategory] = "applies to purchases only"
		}
	}

	return errs
}

func validateDate(c Candidate, rules Rules, errs Errors) {
	raw := strings.TrimSpace(c.Date)
	if raw == "" {
		errs[FieldDate] = "is required"
		return
	}
	date, err := time.Parse(model.DateFormat, raw)
	if err != nil {
		errs[FieldDate] = "must be a date in YYYY-MM-DD format"
		return
	}
	if date.After(rules.today()) {
		errs[FieldDate] = "cannot be in the future"
		return
	}
	if c.Kind == model.KindPurchase {
		if floor := rules.minPurchaseDate(); date.Before(floor) {
			errs[FieldDate] = fmt.Sprintf("purchases cannot be dated before %s", floor.Format(model.DateFormat))
		}
	}
}

func validateInvoice(c Candidate, snapshot []model.Transaction, rules Rules, errs Errors) {
	inv := strings.TrimSpace(c.InvoiceNumber)
	if n := len(inv); n < minInvoiceLen || n > maxInvoiceLen {
		errs[FieldInvoiceNumber] = fmt.Sprintf("must be between %d and %d characters", minInvoiceLen, maxInvoiceLen)
		return
	}
	if !invoicePattern.MatchString(inv) {
		errs[FieldInvoiceNumber] = "may contain only digits and dashes"
		return
	}

	unique := c.Kind == model.KindPurchase || (c.Kind == model.KindSale && rules.UniqueSaleInvoices)
	if !unique {
		return
	}
	for _, t := range snapshot {
		if t.Kind == c.Kind && t.ID != c.ExcludeID && t.InvoiceNumber == inv {
			errs[FieldInvoiceNumber] = fmt.Sprintf("invoice %s is already registered", inv)
			return
		}
	}
}

func checkBaseAmount(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "is required"
	}
	amount, err := tax.ParseAmount(raw)
	if err != nil {
		return "must be a number"
	}
	// Amounts are stored rounded to cents, so the limits apply to the rounded value.
	amount = amount.Round(tax.Places)
	switch {
	case !amount.IsPositive():
		return "must be greater than 0"
	case amount.GreaterThan(maxBaseAmount):
		return "must not exceed 1,000,000.00"
	}
	return ""
}
