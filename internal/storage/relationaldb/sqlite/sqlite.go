// Package sqlite provides the SQLite loan_events backend.
package sqlite

import (
	"context"

	_ "modernc.org/sqlite"

	"github.com/LeJamon/goxrpl-lending/internal/storage/relationaldb"
)

// Dialect is the SQLite flavour of the loan_events schema.
var Dialect = relationaldb.Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	Schema: []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS loan_events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            tx_hash TEXT NOT NULL,
            loan_id TEXT NOT NULL,
            tx_type TEXT NOT NULL,
            action TEXT NOT NULL,
            result TEXT NOT NULL,
            path TEXT NOT NULL DEFAULT '',
            payments INTEGER NOT NULL DEFAULT 0,
            principal_paid TEXT NOT NULL,
            interest_paid TEXT NOT NULL,
            fee_paid TEXT NOT NULL,
            value_change TEXT NOT NULL,
            close_time INTEGER NOT NULL,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_loan_events_loan ON loan_events(loan_id, id);`,
	},
	Placeholder: func(int) string { return "?" },
}

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path string) (*relationaldb.EventStore, error) {
	return relationaldb.Open(ctx, relationaldb.SQLiteConfig(path), Dialect)
}
