package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
)

// timestampFormat is fixed-width so stored timestamps sort lexically.
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed store.Store.
type Store struct {
	db     *sql.DB
	dbPath string
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and initializes the
// schema. Foreign keys and WAL mode are enabled.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// --- Accounts ---

// ListAccounts returns the scope's accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context, projectID string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, code, name, type, cash_equivalent, created_at
		FROM accounts
		WHERE project_id = ?
		ORDER BY code, id
	`, projectID)
	if err != nil {
		return nil, store.Wrap("list accounts", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		var typ, created string
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Code, &a.Name, &typ, &a.CashEquivalent, &created); err != nil {
			return nil, store.Wrap("scan account", err)
		}
		a.Type = model.AccountType(typ)
		if a.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, store.Wrap("scan account", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list accounts", err)
	}
	return accounts, nil
}

// CreateAccount inserts an account.
func (s *Store) CreateAccount(ctx context.Context, a model.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, project_id, code, name, type, cash_equivalent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProjectID, a.Code, a.Name, string(a.Type), a.CashEquivalent, formatTimestamp(a.CreatedAt))
	return store.Wrap("create account", err)
}

// UpdateAccount replaces an account's code, name, type and cash flag.
func (s *Store) UpdateAccount(ctx context.Context, a model.Account) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET code = ?, name = ?, type = ?, cash_equivalent = ?
		WHERE id = ? AND project_id = ?
	`, a.Code, a.Name, string(a.Type), a.CashEquivalent, a.ID, a.ProjectID)
	return affected("update account", result, err)
}

// DeleteAccount removes an account.
func (s *Store) DeleteAccount(ctx context.Context, projectID, accountID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND project_id = ?`, accountID, projectID)
	return affected("delete account", result, err)
}

// --- Transactions ---

// ListTransactions returns the project's transactions, newest date first.
func (s *Store) ListTransactions(ctx context.Context, projectID string, kind model.TransactionKind) ([]model.Transaction, error) {
	query := `
		SELECT id, project_id, owner_id, kind, date, counterparty, invoice_number, description,
		       base_amount, tax_amount, total_amount, expense_category, created_at
		FROM transactions
		WHERE project_id = ?`
	args := []any{projectID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY date DESC, created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Wrap("list transactions", err)
	}
	defer rows.Close()

	txns := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, store.Wrap("scan transaction", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list transactions", err)
	}
	return txns, nil
}

// CreateTransaction inserts a transaction.
func (s *Store) CreateTransaction(ctx context.Context, t model.Transaction) error {
	return store.Wrap("create transaction", insertTransaction(ctx, s.db, t))
}

// CreateTransactions inserts a batch of transactions in one database
// transaction, so a failing row leaves none of the batch behind.
func (s *Store) CreateTransactions(ctx context.Context, ts []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Wrap("create transactions", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for i, t := range ts {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return store.Wrap(fmt.Sprintf("create transaction %d of %d", i+1, len(ts)), err)
		}
	}
	return store.Wrap("commit create transactions", tx.Commit())
}

// UpdateTransaction replaces the editable fields of a transaction.
func (s *Store) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, counterparty = ?, invoice_number = ?, description = ?,
		    base_amount = ?, tax_amount = ?, total_amount = ?, expense_category = ?
		WHERE id = ? AND project_id = ?
	`,
		t.DateString(), t.Counterparty, t.InvoiceNumber, t.Description,
		t.BaseAmount.StringFixed(2), t.TaxAmount.StringFixed(2), t.TotalAmount.StringFixed(2),
		string(t.ExpenseCategory), t.ID, t.ProjectID,
	)
	return affected("update transaction", result, err)
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, projectID, transactionID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND project_id = ?`, transactionID, projectID)
	return affected("delete transaction", result, err)
}

// --- Projects ---

// CreateProject inserts a project.
func (s *Store) CreateProject(ctx context.Context, p model.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, type, owner_id, status, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Type, p.OwnerID, p.Status, formatTimestamp(p.CreatedAt), formatTimestamp(p.LastModified))
	return store.Wrap("create project", err)
}

// ListProjects returns the owner's projects, most recently modified first.
func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, type, owner_id, status, created_at, last_modified
		FROM projects
		WHERE owner_id = ?
		ORDER BY last_modified DESC, id
	`, ownerID)
	if err != nil {
		return nil, store.Wrap("list projects", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, store.Wrap("scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list projects", err)
	}
	return projects, nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, projectID string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, owner_id, status, created_at, last_modified
		FROM projects WHERE id = ?
	`, projectID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, store.ErrNotFound
	}
	if err != nil {
		return model.Project{}, store.Wrap("get project", err)
	}
	return p, nil
}

// UpdateProject replaces a project's mutable fields.
func (s *Store) UpdateProject(ctx context.Context, p model.Project) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, type = ?, status = ?, last_modified = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Type, p.Status, formatTimestamp(p.LastModified), p.ID)
	return affected("update project", result, err)
}

// DeleteProject removes a project with its accounts and transactions in one
// database transaction.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Wrap("delete project", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err := affected("delete project", result, err); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE project_id = ?`, projectID); err != nil {
		return store.Wrap("delete project accounts", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE project_id = ?`, projectID); err != nil {
		return store.Wrap("delete project transactions", err)
	}
	return store.Wrap("commit delete project", tx.Commit())
}

// --- helpers ---

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t model.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (id, project_id, owner_id, kind, date, counterparty, invoice_number,
		                          description, base_amount, tax_amount, total_amount, expense_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.ProjectID, t.OwnerID, string(t.Kind), t.DateString(), t.Counterparty, t.InvoiceNumber,
		t.Description, t.BaseAmount.StringFixed(2), t.TaxAmount.StringFixed(2), t.TotalAmount.StringFixed(2),
		string(t.ExpenseCategory), formatTimestamp(t.CreatedAt),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	var kind, day, base, taxAmt, total, category, created string
	if err := row.Scan(&t.ID, &t.ProjectID, &t.OwnerID, &kind, &day, &t.Counterparty, &t.InvoiceNumber,
		&t.Description, &base, &taxAmt, &total, &category, &created); err != nil {
		return model.Transaction{}, err
	}

	var err error
	t.Kind = model.TransactionKind(kind)
	t.ExpenseCategory = model.ExpenseCategory(category)
	if t.Date, err = time.Parse(model.DateFormat, day); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", day, err)
	}
	if t.BaseAmount, err = decimal.NewFromString(base); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing base_amount %q: %w", base, err)
	}
	if t.TaxAmount, err = decimal.NewFromString(taxAmt); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing tax_amount %q: %w", taxAmt, err)
	}
	if t.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing total_amount %q: %w", total, err)
	}
	if t.CreatedAt, err = parseTimestamp(created); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func scanProject(row scanner) (model.Project, error) {
	var p model.Project
	var created, modified string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Type, &p.OwnerID, &p.Status, &created, &modified); err != nil {
		return model.Project{}, err
	}
	var err error
	if p.CreatedAt, err = parseTimestamp(created); err != nil {
		return model.Project{}, err
	}
	if p.LastModified, err = parseTimestamp(modified); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// affected converts a zero-row update or delete into store.ErrNotFound.
func affected(op string, result sql.Result, err error) error {
	if err != nil {
		return store.Wrap(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return store.Wrap(op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
