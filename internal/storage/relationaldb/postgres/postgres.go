// Package postgres provides the PostgreSQL loan_events backend.
package postgres

import (
	"context"
	"strconv"

	_ "github.com/lib/pq"

	"github.com/LeJamon/goxrpl-lending/internal/storage/relationaldb"
)

// Dialect is the PostgreSQL flavour of the loan_events schema.
var Dialect = relationaldb.Dialect{
	Name:   "postgres",
	Driver: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS loan_events (
            id BIGSERIAL PRIMARY KEY,
            tx_hash CHAR(64) NOT NULL,
            loan_id CHAR(64) NOT NULL,
            tx_type VARCHAR(32) NOT NULL,
            action VARCHAR(32) NOT NULL,
            result VARCHAR(32) NOT NULL,
            path VARCHAR(16) NOT NULL DEFAULT '',
            payments INTEGER NOT NULL DEFAULT 0,
            principal_paid TEXT NOT NULL,
            interest_paid TEXT NOT NULL,
            fee_paid TEXT NOT NULL,
            value_change TEXT NOT NULL,
            close_time BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_loan_events_loan ON loan_events(loan_id, id)`,
	},
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg *relationaldb.Config) (*relationaldb.EventStore, error) {
	cfg.Driver = relationaldb.DriverPostgres
	return relationaldb.Open(ctx, cfg, Dialect)
}

// OpenDSN connects using a connection string.
func OpenDSN(ctx context.Context, dsn string) (*relationaldb.EventStore, error) {
	return Open(ctx, relationaldb.PostgresConfig(dsn))
}
