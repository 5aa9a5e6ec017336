package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ghanu-pos/api/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgxpool.Pool used by the archive.
// Satisfied by *pgxpool.Pool and pgx.Tx; narrow interface for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createArchiveTable = `
CREATE TABLE IF NOT EXISTS order_ledger (
	id           BIGSERIAL PRIMARY KEY,
	order_number INTEGER NOT NULL,
	status       TEXT NOT NULL,
	total        NUMERIC(12,2) NOT NULL,
	placed_at    TIMESTAMP NOT NULL,
	payload      JSONB NOT NULL,
	archived_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertArchiveRow = `
INSERT INTO order_ledger (order_number, status, total, placed_at, payload)
VALUES ($1, $2, $3, $4, $5)`

// LedgerArchive mirrors ledger appends into Postgres for reporting outside
// the terminal. The JSON file stays the source of truth.
type LedgerArchive struct {
	db DBTX
}

func NewLedgerArchive(db DBTX) *LedgerArchive {
	return &LedgerArchive{db: db}
}

// EnsureSchema creates the archive table if needed.
func (a *LedgerArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, createArchiveTable); err != nil {
		return fmt.Errorf("create order_ledger: %w", err)
	}
	return nil
}

// Archive inserts one ledger record.
func (a *LedgerArchive) Archive(ctx context.Context, o model.Order) error {
	var total pgtype.Numeric
	if err := total.Scan(o.Total.StringFixed(2)); err != nil {
		return fmt.Errorf("archive order %d: total: %w", o.OrderNumber, err)
	}

	var placed pgtype.Timestamp
	if t, err := time.ParseInLocation(model.DateTimeLayout, o.DateTime, time.Local); err == nil {
		placed = pgtype.Timestamp{Time: t, Valid: true}
	} else {
		placed = pgtype.Timestamp{Time: time.Now(), Valid: true}
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("archive order %d: encode: %w", o.OrderNumber, err)
	}

	if _, err := a.db.Exec(ctx, insertArchiveRow, int32(o.OrderNumber), o.Status.String(), total, placed, payload); err != nil {
		return fmt.Errorf("archive order %d: %w", o.OrderNumber, err)
	}
	return nil
}
