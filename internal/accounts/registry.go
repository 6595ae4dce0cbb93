package accounts

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
)

var (
	// ErrDuplicateCode is returned when a code is already used in the scope.
	ErrDuplicateCode = errors.New("account code already exists")

	// ErrInvalidType is returned for an unknown account type.
	ErrInvalidType = errors.New("invalid account type")

	// ErrTypeImmutable is returned when changing the type of a global account.
	ErrTypeImmutable = errors.New("account type cannot change in the global catalog")

	// ErrCodeRequired is returned when an account has no code.
	ErrCodeRequired = errors.New("account code is required")

	// ErrNameRequired is returned when an account has no name.
	ErrNameRequired = errors.New("account name is required")
)

// CreateParams describes a new account. A nil CashEquivalent defaults from
// the account name.
type CreateParams struct {
	Code           string
	Name           string
	Type           model.AccountType
	CashEquivalent *bool
}

// UpdateParams describes changes to an existing account. Nil fields are left
// untouched.
type UpdateParams struct {
	Code           *string
	Name           *string
	Type           *model.AccountType
	CashEquivalent *bool
}

// Registry manages the chart of accounts of one scope. An empty project ID
// addresses the global catalog.
type Registry struct {
	repo      store.AccountRepository
	projectID string
	logger    *slog.Logger
	now       func() time.Time
}

// NewRegistry creates a Registry for the given scope.
func NewRegistry(repo store.AccountRepository, projectID string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{repo: repo, projectID: projectID, logger: logger, now: time.Now}
}

// ProjectID returns the scope of the registry.
func (r *Registry) ProjectID() string {
	return r.projectID
}

// Load reads the scope's accounts into a lookup Service.
func (r *Registry) Load(ctx context.Context) (*Service, error) {
	accts, err := r.repo.ListAccounts(ctx, r.projectID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return NewService(accts), nil
}

// LoadChart reads the chart the ledger derives from: the scope's accounts
// merged with the global catalog (see Merge). For the global scope it is the
// catalog alone.
func (r *Registry) LoadChart(ctx context.Context) (*Service, error) {
	own, err := r.repo.ListAccounts(ctx, r.projectID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if r.projectID == "" {
		return NewService(own), nil
	}
	global, err := r.repo.ListAccounts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading global catalog: %w", err)
	}
	return NewService(Merge(own, global)), nil
}

// Create validates and persists a new account.
func (r *Registry) Create(ctx context.Context, p CreateParams) (model.Account, error) {
	code := strings.TrimSpace(p.Code)
	name := strings.TrimSpace(p.Name)
	if code == "" {
		return model.Account{}, ErrCodeRequired
	}
	if name == "" {
		return model.Account{}, ErrNameRequired
	}
	if !validType(p.Type) {
		return model.Account{}, fmt.Errorf("%w: %q", ErrInvalidType, p.Type)
	}

	svc, err := r.Load(ctx)
	if err != nil {
		return model.Account{}, err
	}
	if _, taken := svc.ByCode(code); taken {
		return model.Account{}, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}

	cash := model.LooksLikeCash(name)
	if p.CashEquivalent != nil {
		cash = *p.CashEquivalent
	}

	acct := model.Account{
		ID:             id.New(),
		ProjectID:      r.projectID,
		Code:           code,
		Name:           name,
		Type:           p.Type,
		CashEquivalent: cash,
		CreatedAt:      r.now().UTC(),
	}
	if err := r.repo.CreateAccount(ctx, acct); err != nil {
		return model.Account{}, fmt.Errorf("creating account %s: %w", code, err)
	}
	r.logger.Debug("account created", "project", r.projectID, "code", code, "type", acct.Type)
	return acct, nil
}

// Update applies changes to an existing account.
func (r *Registry) Update(ctx context.Context, accountID string, p UpdateParams) (model.Account, error) {
	svc, err := r.Load(ctx)
	if err != nil {
		return model.Account{}, err
	}
	acct, ok := svc.Get(accountID)
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}

	if p.Code != nil {
		code := strings.TrimSpace(*p.Code)
		if code == "" {
			return model.Account{}, ErrCodeRequired
		}
		if other, taken := svc.ByCode(code); taken && other.ID != acct.ID {
			return model.Account{}, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
		acct.Code = code
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return model.Account{}, ErrNameRequired
		}
		acct.Name = name
	}
	if p.Type != nil && *p.Type != acct.Type {
		if acct.Global() {
			return model.Account{}, ErrTypeImmutable
		}
		if !validType(*p.Type) {
			return model.Account{}, fmt.Errorf("%w: %q", ErrInvalidType, *p.Type)
		}
		acct.Type = *p.Type
	}
	if p.CashEquivalent != nil {
		acct.CashEquivalent = *p.CashEquivalent
	}

	if err := r.repo.UpdateAccount(ctx, acct); err != nil {
		return model.Account{}, fmt.Errorf("updating account %s: %w", acct.Code, err)
	}
	return acct, nil
}

// Delete removes an account from the scope.
func (r *Registry) Delete(ctx context.Context, accountID string) error {
	if err := r.repo.DeleteAccount(ctx, r.projectID, accountID); err != nil {
		return fmt.Errorf("deleting account %s: %w", accountID, err)
	}
	return nil
}

// Seed creates every account of chart whose code is not yet present. It
// returns the number of accounts created.
func (r *Registry) Seed(ctx context.Context, chart []model.Account) (int, error) {
	svc, err := r.Load(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, a := range chart {
		if _, exists := svc.ByCode(a.Code); exists {
			continue
		}
		cash := a.CashEquivalent
		if _, err := r.Create(ctx, CreateParams{Code: a.Code, Name: a.Name, Type: a.Type, CashEquivalent: &cash}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func validType(t model.AccountType) bool {
	for _, v := range model.AccountTypes {
		if t == v {
			return true
		}
	}
	return false
}
