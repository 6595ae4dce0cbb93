package accounts

import (
	"github.com/libros-dev/libros/internal/model"
)

// Service provides in-memory lookup over a loaded chart of accounts. The
// order of the slice it was built from is preserved; the ledger relies on it
// when it picks the first account of a kind.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
	byCode   map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	byCode := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
		if _, dup := byCode[a.Code]; !dup {
			byCode[a.Code] = a
		}
	}
	return &Service{accounts: accounts, byID: byID, byCode: byCode}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// ByCode returns an account by code.
func (s *Service) ByCode(code string) (model.Account, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// Lookup resolves an account by ID or, failing that, by code.
func (s *Service) Lookup(ref string) (model.Account, bool) {
	if a, ok := s.byID[ref]; ok {
		return a, true
	}
	return s.ByCode(ref)
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// CountByType returns how many accounts exist per type. Every type is
// present in the map, with zero when the chart has none.
func (s *Service) CountByType() map[model.AccountType]int {
	counts := make(map[model.AccountType]int, len(model.AccountTypes))
	for _, t := range model.AccountTypes {
		counts[t] = 0
	}
	for _, a := range s.accounts {
		counts[a.Type]++
	}
	return counts
}

// Merge returns the project chart followed by the global catalog accounts
// whose code the project does not define. Project accounts shadow global
// ones with the same code.
func Merge(project, global []model.Account) []model.Account {
	out := make([]model.Account, 0, len(project)+len(global))
	out = append(out, project...)
	defined := make(map[string]bool, len(project))
	for _, a := range project {
		defined[a.Code] = true
	}
	for _, a := range global {
		if !defined[a.Code] {
			out = append(out, a)
		}
	}
	return out
}
