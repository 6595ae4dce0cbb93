package sqlite

// Schema defines the SQL statements to create the database tables.
//
// invoice_number carries no unique index: uniqueness is checked by the
// journal against its loaded snapshot.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    last_modified TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_owner
    ON projects(owner_id, last_modified);

-- project_id = '' is the global catalog
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL DEFAULT '',
    code TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    cash_equivalent INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_scope_code
    ON accounts(project_id, code);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    kind TEXT NOT NULL,                -- 'Sale' or 'Purchase'
    date TEXT NOT NULL,                -- YYYY-MM-DD
    counterparty TEXT NOT NULL,
    invoice_number TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    base_amount TEXT NOT NULL,         -- decimal, 2 places
    tax_amount TEXT NOT NULL,
    total_amount TEXT NOT NULL,
    expense_category TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_project_date
    ON transactions(project_id, date);
`
