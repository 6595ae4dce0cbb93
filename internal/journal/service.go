package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/libros-dev/libros/internal/id"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
	"github.com/libros-dev/libros/internal/tax"
)

var (
	// ErrSaleNotEditable is returned when updating or deleting a sale. Sales
	// are create-only.
	ErrSaleNotEditable = errors.New("sales cannot be edited or deleted")

	// ErrInconsistentTax is returned when a record's tax or total does not
	// follow from its base amount.
	ErrInconsistentTax = errors.New("tax and total do not match the base amount")
)

// Service is the transaction ledger of one project. It keeps the last
// loaded snapshot of the project's transactions; validation runs against
// that snapshot and every write is followed by a full reload.
type Service struct {
	repo      store.TransactionRepository
	projectID string
	ownerID   string
	rules     Rules
	logger    *slog.Logger
	now       func() time.Time

	snapshot []model.Transaction
}

// NewService creates a ledger for a project. Call Reload before validating
// against existing transactions.
func NewService(repo store.TransactionRepository, projectID, ownerID string, rules Rules, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		projectID: projectID,
		ownerID:   ownerID,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for timestamps and the future-date check.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ProjectID returns the project the ledger belongs to.
func (s *Service) ProjectID() string {
	return s.projectID
}

// Reload replaces the snapshot with the project's full collection.
func (s *Service) Reload(ctx context.Context) error {
	txns, err := s.repo.ListTransactions(ctx, s.projectID, "")
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	s.snapshot = txns
	s.logger.Debug("transactions loaded", "project", s.projectID, "count", len(txns))
	return nil
}

// Snapshot returns a copy of the loaded transactions, newest first.
func (s *Service) Snapshot() []model.Transaction {
	out := make([]model.Transaction, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// ByKind returns the loaded transactions of one kind, newest first.
func (s *Service) ByKind(kind model.TransactionKind) []model.Transaction {
	var out []model.Transaction
	for _, t := range s.snapshot {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// Get returns a loaded transaction by ID.
func (s *Service) Get(transactionID string) (model.Transaction, bool) {
	for _, t := range s.snapshot {
		if t.ID == transactionID {
			return t, true
		}
	}
	return model.Transaction{}, false
}

// Validate checks a candidate against the current snapshot.
func (s *Service) Validate(c Candidate) Errors {
	return Validate(c, s.snapshot, s.effectiveRules())
}

// ValidateBatch checks candidates that will be created together. Each one
// is checked against the snapshot plus the candidates before it, so a batch
// cannot repeat a purchase invoice number. The result is indexed like cands;
// valid candidates get an empty Errors.
func (s *Service) ValidateBatch(cands []Candidate) []Errors {
	rules := s.effectiveRules()
	seen := make([]model.Transaction, len(s.snapshot), len(s.snapshot)+len(cands))
	copy(seen, s.snapshot)

	out := make([]Errors, len(cands))
	for i, c := range cands {
		c.ExcludeID = ""
		out[i] = Validate(c, seen, rules)
		seen = append(seen, model.Transaction{
			ID:            fmt.Sprintf("pending-%d", i),
			Kind:          c.Kind,
			InvoiceNumber: strings.TrimSpace(c.InvoiceNumber),
		})
	}
	return out
}

// Create validates a candidate, enriches it with tax and persists it. A
// validation failure is returned as Errors and nothing is written.
func (s *Service) Create(ctx context.Context, c Candidate) (model.Transaction, error) {
	c.ExcludeID = ""
	if err := s.Validate(c).Err(); err != nil {
		return model.Transaction{}, err
	}

	t := s.build(c)
	t.ID = id.New()
	t.CreatedAt = s.now().UTC()
	if !tax.Consistent(t.BaseAmount, t.TaxAmount, t.TotalAmount) {
		return model.Transaction{}, ErrInconsistentTax
	}

	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return model.Transaction{}, fmt.Errorf("creating %s %s: %w", strings.ToLower(string(t.Kind)), t.InvoiceNumber, err)
	}
	s.logger.Info("transaction created",
		"project", s.projectID,
		"kind", t.Kind,
		"invoice", t.InvoiceNumber,
		"total", t.TotalAmount.StringFixed(tax.Places),
	)

	if err := s.Reload(ctx); err != nil {
		return t, fmt.Errorf("reloading after create: %w", err)
	}
	return t, nil
}

// CreateBatch creates all candidates in one store call, or none of them. A
// candidate that fails validation against the snapshot and the rows before
// it stops the batch before anything is written.
func (s *Service) CreateBatch(ctx context.Context, cands []Candidate) ([]model.Transaction, error) {
	for i, errs := range s.ValidateBatch(cands) {
		if err := errs.Err(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	now := s.now().UTC()
	ts := make([]model.Transaction, 0, len(cands))
	for _, c := range cands {
		t := s.build(c)
		t.ID = id.New()
		t.CreatedAt = now
		if !tax.Consistent(t.BaseAmount, t.TaxAmount, t.TotalAmount) {
			return nil, ErrInconsistentTax
		}
		ts = append(ts, t)
	}

	if err := s.repo.CreateTransactions(ctx, ts); err != nil {
		return nil, fmt.Errorf("creating %d transactions: %w", len(ts), err)
	}
	s.logger.Info("transactions created", "project", s.projectID, "count", len(ts))

	if err := s.Reload(ctx); err != nil {
		return ts, fmt.Errorf("reloading after create: %w", err)
	}
	return ts, nil
}

// Update replaces a purchase in place. The ID, owner and creation time of
// the original are retained.
func (s *Service) Update(ctx context.Context, transactionID string, c Candidate) (model.Transaction, error) {
	existing, err := s.editable(transactionID)
	if err != nil {
		return model.Transaction{}, err
	}

	c.Kind = existing.Kind
	c.ExcludeID = existing.ID
	if err := s.Validate(c).Err(); err != nil {
		return model.Transaction{}, err
	}

	t := s.build(c)
	t.ID = existing.ID
	t.OwnerID = existing.OwnerID
	t.CreatedAt = existing.CreatedAt
	if !tax.Consistent(t.BaseAmount, t.TaxAmount, t.TotalAmount) {
		return model.Transaction{}, ErrInconsistentTax
	}

	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return model.Transaction{}, fmt.Errorf("updating purchase %s: %w", t.InvoiceNumber, err)
	}
	s.logger.Info("transaction updated", "project", s.projectID, "id", t.ID, "invoice", t.InvoiceNumber)

	if err := s.Reload(ctx); err != nil {
		return t, fmt.Errorf("reloading after update: %w", err)
	}
	return t, nil
}

// Delete removes a purchase.
func (s *Service) Delete(ctx context.Context, transactionID string) error {
	existing, err := s.editable(transactionID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, s.projectID, existing.ID); err != nil {
		return fmt.Errorf("deleting purchase %s: %w", existing.InvoiceNumber, err)
	}
	s.logger.Info("transaction deleted", "project", s.projectID, "id", existing.ID, "invoice", existing.InvoiceNumber)

	if err := s.Reload(ctx); err != nil {
		return fmt.Errorf("reloading after delete: %w", err)
	}
	return nil
}

func (s *Service) editable(transactionID string) (model.Transaction, error) {
	t, ok := s.Get(transactionID)
	if !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", transactionID, store.ErrNotFound)
	}
	if t.Kind == model.KindSale {
		return model.Transaction{}, ErrSaleNotEditable
	}
	return t, nil
}

func (s *Service) effectiveRules() Rules {
	r := s.rules
	if r.Today.IsZero() {
		r.Today = s.now()
	}
	return r
}

// build converts a validated candidate into a tax-enriched transaction.
func (s *Service) build(c Candidate) model.Transaction {
	date, _ := time.Parse(model.DateFormat, strings.TrimSpace(c.Date))
	b, _ := tax.ComputeString(c.BaseAmount)

	t := model.Transaction{
		Kind:          c.Kind,
		Date:          date,
		Counterparty:  strings.TrimSpace(c.Counterparty),
		InvoiceNumber: strings.TrimSpace(c.InvoiceNumber),
		Description:   strings.TrimSpace(c.Description),
		BaseAmount:    b.Base,
		TaxAmount:     b.Tax,
		TotalAmount:   b.Total,
		ProjectID:     s.projectID,
		OwnerID:       s.ownerID,
	}
	if c.Kind == model.KindPurchase {
		t.ExpenseCategory = model.CategoryMerchandise
		if cat, ok := model.ParseExpenseCategory(c.ExpenseCategory); ok {
			t.ExpenseCategory = cat
		}
	}
	return t
}
