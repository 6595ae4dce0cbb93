package store

import (
	"context"
	"sort"
	"sync"

	"github.com/libros-dev/libros/internal/model"
)

// Memory is an in-process Store. It is used by tests and by the API server
// when no database path is configured.
type Memory struct {
	mu           sync.Mutex
	accounts     map[string]model.Account
	transactions map[string]model.Transaction
	projects     map[string]model.Project
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts:     make(map[string]model.Account),
		transactions: make(map[string]model.Transaction),
		projects:     make(map[string]model.Project),
	}
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// ListAccounts returns the scope's accounts ordered by code.
func (m *Memory) ListAccounts(_ context.Context, projectID string) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []model.Account{}
	for _, a := range m.accounts {
		if a.ProjectID == projectID {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Code != result[j].Code {
			return result[i].Code < result[j].Code
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CreateAccount stores a new account.
func (m *Memory) CreateAccount(_ context.Context, a model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[a.ID]; ok {
		return ErrDuplicate
	}
	m.accounts[a.ID] = a
	return nil
}

// UpdateAccount replaces an existing account.
func (m *Memory) UpdateAccount(_ context.Context, a model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.accounts[a.ID]
	if !ok || old.ProjectID != a.ProjectID {
		return ErrNotFound
	}
	m.accounts[a.ID] = a
	return nil
}

// DeleteAccount removes an account.
func (m *Memory) DeleteAccount(_ context.Context, projectID, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok || a.ProjectID != projectID {
		return ErrNotFound
	}
	delete(m.accounts, accountID)
	return nil
}

// ListTransactions returns the project's transactions, newest date first.
func (m *Memory) ListTransactions(_ context.Context, projectID string, kind model.TransactionKind) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []model.Transaction{}
	for _, t := range m.transactions {
		if t.ProjectID != projectID {
			continue
		}
		if kind != "" && t.Kind != kind {
			continue
		}
		result = append(result, t)
	}
	sortByDateDesc(result)
	return result, nil
}

// CreateTransaction stores a new transaction.
func (m *Memory) CreateTransaction(_ context.Context, t model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[t.ID]; ok {
		return ErrDuplicate
	}
	m.transactions[t.ID] = t
	return nil
}

// CreateTransactions stores a batch of new transactions. Nothing is stored
// when any ID is already taken.
func (m *Memory) CreateTransactions(_ context.Context, ts []model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(ts))
	for _, t := range ts {
		if _, ok := m.transactions[t.ID]; ok || seen[t.ID] {
			return ErrDuplicate
		}
		seen[t.ID] = true
	}
	for _, t := range ts {
		m.transactions[t.ID] = t
	}
	return nil
}

// UpdateTransaction replaces an existing transaction.
func (m *Memory) UpdateTransaction(_ context.Context, t model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.transactions[t.ID]
	if !ok || old.ProjectID != t.ProjectID {
		return ErrNotFound
	}
	m.transactions[t.ID] = t
	return nil
}

// DeleteTransaction removes a transaction.
func (m *Memory) DeleteTransaction(_ context.Context, projectID, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[transactionID]
	if !ok || t.ProjectID != projectID {
		return ErrNotFound
	}
	delete(m.transactions, transactionID)
	return nil
}

// CreateProject stores a new project.
func (m *Memory) CreateProject(_ context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[p.ID]; ok {
		return ErrDuplicate
	}
	m.projects[p.ID] = p
	return nil
}

// ListProjects returns the owner's projects, most recently modified first.
func (m *Memory) ListProjects(_ context.Context, ownerID string) ([]model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []model.Project{}
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].LastModified.After(result[j].LastModified)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// GetProject returns a project by ID.
func (m *Memory) GetProject(_ context.Context, projectID string) (model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

// UpdateProject replaces an existing project.
func (m *Memory) UpdateProject(_ context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[p.ID]; !ok {
		return ErrNotFound
	}
	m.projects[p.ID] = p
	return nil
}

// DeleteProject removes a project and everything scoped to it.
func (m *Memory) DeleteProject(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[projectID]; !ok {
		return ErrNotFound
	}
	delete(m.projects, projectID)
	for id, a := range m.accounts {
		if a.ProjectID == projectID {
			delete(m.accounts, id)
		}
	}
	for id, t := range m.transactions {
		if t.ProjectID == projectID {
			delete(m.transactions, id)
		}
	}
	return nil
}

// sortByDateDesc orders transactions newest date first, then newest creation
// first, then by ID so listings are deterministic.
func sortByDateDesc(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
