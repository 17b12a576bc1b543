package sqlite

import (
	"context"
	"database/sql"
)

// schema creates the account and journal tables. The journal table
// references its owner; rows are never deleted by the application.
const schema = `
CREATE TABLE IF NOT EXISTS "user" (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    hashed_password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS finance_journal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    journal_note TEXT NOT NULL,
    ai_extracted_income TEXT NOT NULL DEFAULT '',
    ai_extracted_expenses TEXT NOT NULL DEFAULT '',
    ai_financial_advice TEXT NOT NULL DEFAULT '',
    ai_budget_summary TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES "user"(id)
);

CREATE INDEX IF NOT EXISTS idx_finance_journal_user_id ON finance_journal(user_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
