package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/libros-dev/libros/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a record with the same identity exists.
	ErrDuplicate = errors.New("duplicate record")
)

// Error wraps a failure of the underlying store. The current operation is
// aborted; nothing is retried.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err wrapped as a store Error for op, or nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// AccountRepository persists a chart of accounts. An empty projectID
// addresses the global catalog.
type AccountRepository interface {
	// ListAccounts returns the accounts of a scope ordered by code. A scope
	// with no accounts yields an empty slice, not ErrNotFound.
	ListAccounts(ctx context.Context, projectID string) ([]model.Account, error)
	CreateAccount(ctx context.Context, a model.Account) error
	UpdateAccount(ctx context.Context, a model.Account) error
	DeleteAccount(ctx context.Context, projectID, accountID string) error
}

// TransactionRepository persists the sales and purchases of a project.
type TransactionRepository interface {
	// ListTransactions returns the project's transactions ordered by date,
	// newest first. An empty kind lists both books.
	ListTransactions(ctx context.Context, projectID string, kind model.TransactionKind) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, t model.Transaction) error
	// CreateTransactions stores all of ts or none of them.
	CreateTransactions(ctx context.Context, ts []model.Transaction) error
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, projectID, transactionID string) error
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p model.Project) error
	// ListProjects returns the owner's projects, most recently modified first.
	ListProjects(ctx context.Context, ownerID string) ([]model.Project, error)
	GetProject(ctx context.Context, projectID string) (model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) error
	// DeleteProject removes the project with its accounts and transactions.
	DeleteProject(ctx context.Context, projectID string) error
}

// Store is the full persistence contract.
type Store interface {
	AccountRepository
	TransactionRepository
	ProjectRepository
	Close() error
}
