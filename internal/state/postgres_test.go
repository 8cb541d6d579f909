package state

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"wetwatch/internal/types"
)

type fakeRow struct {
	raw []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*[]byte); ok {
		*p = r.raw
	}
	return nil
}

// fakeDB records executed SQL and serves a canned row.
type fakeDB struct {
	row      fakeRow
	execErr  error
	execSQL  []string
	execArgs [][]any
	queryArg any
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execSQL = append(db.execSQL, sql)
	db.execArgs = append(db.execArgs, args)
	return pgconn.CommandTag{}, db.execErr
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if len(args) > 0 {
		db.queryArg = args[0]
	}
	return db.row
}

func TestPostgresLoadNoRows(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	store := NewPostgresStore(db, "driveway", &testLogger{})

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.RainForecasted || got.CycleID != "" {
		t.Errorf("no-rows load did not yield an empty record: %+v", got)
	}
	if db.queryArg != "driveway" {
		t.Errorf("queried monitor_id = %v, want driveway", db.queryArg)
	}
}

func TestPostgresLoadRoundTrip(t *testing.T) {
	raw, err := json.Marshal(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	db := &fakeDB{row: fakeRow{raw: raw}}
	store := NewPostgresStore(db, "driveway", &testLogger{})

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.CycleID != "cycle-1" || !got.RainForecasted {
		t.Errorf("loaded record = %+v, want persisted sample", got)
	}
}

func TestPostgresLoadCorruptRecord(t *testing.T) {
	logger := &testLogger{}
	db := &fakeDB{row: fakeRow{raw: []byte("{not json")}}
	store := NewPostgresStore(db, "driveway", logger)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() of corrupt record: %v", err)
	}
	if got.CycleID != "" {
		t.Errorf("corrupt record did not yield an empty record: %+v", got)
	}
	if logger.warns == 0 {
		t.Error("corrupt record loaded without a warning")
	}
}

func TestPostgresSaveUpserts(t *testing.T) {
	db := &fakeDB{}
	store := NewPostgresStore(db, "driveway", &testLogger{})

	if err := store.Save(context.Background(), sampleState()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if len(db.execSQL) != 1 {
		t.Fatalf("executed %d statements, want 1", len(db.execSQL))
	}
	if !strings.Contains(db.execSQL[0], "ON CONFLICT") {
		t.Errorf("save statement is not an upsert: %s", db.execSQL[0])
	}
	if db.execArgs[0][0] != "driveway" {
		t.Errorf("save monitor_id = %v, want driveway", db.execArgs[0][0])
	}
}

func TestPostgresSaveError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection reset")}
	store := NewPostgresStore(db, "driveway", &testLogger{})

	err := store.Save(context.Background(), sampleState())
	if err == nil {
		t.Fatal("Save() succeeded despite exec failure")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeStateWrite {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeStateWrite)
	}
}
