package state

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"wetwatch/internal/types"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx, so the
// store works inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists the record as a single row keyed by monitor ID,
// letting one table serve several cameras without schema change.
type PostgresStore struct {
	db        DBTX
	monitorID string
	logger    types.Logger
}

// Compile-time assertion that PostgresStore implements types.StateStore.
var _ types.StateStore = (*PostgresStore)(nil)

// NewPostgresStore creates a postgres-backed state store for the given
// monitor ID.
func NewPostgresStore(db DBTX, monitorID string, logger types.Logger) *PostgresStore {
	return &PostgresStore{db: db, monitorID: monitorID, logger: logger}
}

// EnsureSchema creates the run_state table if it does not exist. Called
// once from cmd wiring; there is no migration tooling for a single table.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS run_state (
			monitor_id TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to ensure run_state schema", err)
	}
	return nil
}

// Load reads the record for this monitor. No row yields an empty record;
// a corrupt record yields an empty record and a log entry, matching the
// file backend's tolerance.
func (s *PostgresStore) Load(ctx context.Context) (*types.RunState, error) {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT record FROM run_state WHERE monitor_id = $1`,
		s.monitorID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &types.RunState{}, nil
		}
		s.logger.Warn("state row unreadable, starting from empty record",
			"monitor_id", s.monitorID,
			"error", err,
		)
		return &types.RunState{}, nil
	}

	var st types.RunState
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Warn("state row corrupt, starting from empty record",
			"monitor_id", s.monitorID,
			"error", err,
		)
		return &types.RunState{}, nil
	}

	return &st, nil
}

// Save upserts the full record, replacing any prior content for this
// monitor.
func (s *PostgresStore) Save(ctx context.Context, st *types.RunState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to marshal run state", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO run_state (monitor_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (monitor_id)
		DO UPDATE SET record = EXCLUDED.record, updated_at = now()`,
		s.monitorID, raw,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to persist run state", err)
	}

	return nil
}
