package relationaldb

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

const defaultHistoryLimit = 200

// EventStore implements EventRepository over database/sql.
type EventStore struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
}

var _ EventRepository = (*EventStore)(nil)

// Open opens the database described by cfg using dialect d and creates the
// schema.
func Open(ctx context.Context, cfg *Config, d Dialect) (*EventStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, storeError(StageConfig, "validate", err)
	}
	dsn, err := cfg.BuildConnectionString()
	if err != nil {
		return nil, storeError(StageConfig, "build dsn", err)
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, storeError(StageConnect, "open "+d.Name, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	s := NewEventStore(db, d, cfg.DefaultTimeout)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewEventStore wraps an open database. Init must be called before use.
func NewEventStore(db *sql.DB, d Dialect, timeout time.Duration) *EventStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EventStore{db: db, dialect: d, timeout: timeout}
}

// Dialect returns the SQL dialect in use.
func (s *EventStore) Dialect() Dialect { return s.dialect }

// Init creates the loan_events table and its indexes if missing.
func (s *EventStore) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storeError(StageSchema, "create table", err)
		}
	}
	return nil
}

// Insert appends ev and sets its ID.
func (s *EventStore) Insert(ctx context.Context, ev *LoanEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO loan_events
		(tx_hash, loan_id, tx_type, action, result, path, payments,
		 principal_paid, interest_paid, fee_paid, value_change, close_time, created_at)
		VALUES (%s) RETURNING id`, s.placeholders(13))

	row := s.db.QueryRowContext(ctx, query,
		hex.EncodeToString(ev.TxHash[:]),
		hex.EncodeToString(ev.LoanID[:]),
		ev.TxType, ev.Action, ev.Result, ev.Path, ev.Payments,
		ev.PrincipalPaid.String(), ev.InterestPaid.String(),
		ev.FeePaid.String(), ev.ValueChange.String(),
		int64(ev.CloseTime), ev.CreatedAt,
	)
	if err := row.Scan(&ev.ID); err != nil {
		return storeError(StageQuery, "insert", err)
	}
	return nil
}

// LoanHistory returns the events recorded for loanID, oldest first. A limit
// of zero uses the default.
func (s *EventStore) LoanHistory(ctx context.Context, loanID [32]byte, limit int) ([]LoanEvent, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, tx_hash, loan_id, tx_type, action, result, path, payments,
		principal_paid, interest_paid, fee_paid, value_change, close_time, created_at
		FROM loan_events WHERE loan_id = %s ORDER BY id ASC LIMIT %s`,
		s.dialect.Placeholder(1), s.dialect.Placeholder(2))

	rows, err := s.db.QueryContext(ctx, query, hex.EncodeToString(loanID[:]), limit)
	if err != nil {
		return nil, storeError(StageQuery, "history", err)
	}
	defer rows.Close()

	var out []LoanEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, storeError(StageQuery, "history scan", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(StageQuery, "history scan", err)
	}
	return out, nil
}

// Count returns the number of recorded events.
func (s *EventStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM loan_events`).Scan(&n); err != nil {
		return 0, storeError(StageQuery, "count", err)
	}
	return n, nil
}

// Close closes the database. It is safe to call more than once.
func (s *EventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *EventStore) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.dialect.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

func scanEvent(rows *sql.Rows) (LoanEvent, error) {
	var (
		ev                           LoanEvent
		txHash, loanID               string
		principal, interest, fee, vc string
		closeTime                    int64
	)
	if err := rows.Scan(&ev.ID, &txHash, &loanID, &ev.TxType, &ev.Action, &ev.Result,
		&ev.Path, &ev.Payments, &principal, &interest, &fee, &vc, &closeTime, &ev.CreatedAt); err != nil {
		return ev, err
	}
	if err := decodeHash(txHash, &ev.TxHash); err != nil {
		return ev, fmt.Errorf("tx_hash: %w", err)
	}
	if err := decodeHash(loanID, &ev.LoanID); err != nil {
		return ev, fmt.Errorf("loan_id: %w", err)
	}
	for _, f := range []struct {
		dst *number.Number
		src string
	}{
		{&ev.PrincipalPaid, principal},
		{&ev.InterestPaid, interest},
		{&ev.FeePaid, fee},
		{&ev.ValueChange, vc},
	} {
		v, err := number.Parse(f.src)
		if err != nil {
			return ev, err
		}
		*f.dst = v
	}
	ev.CloseTime = uint32(closeTime)
	return ev, nil
}

func decodeHash(s string, dst *[32]byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("expected %d bytes, got %d", len(dst), len(b))
	}
	copy(dst[:], b)
	return nil
}
