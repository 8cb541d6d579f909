// Package state persists the single run state record. The record is read
// at cycle start and rewritten wholesale at cycle end; both backends treat
// an absent or corrupt record as empty rather than failing the cycle.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wetwatch/internal/types"
)

// FileStore persists the record as a single JSON document on disk.
type FileStore struct {
	path   string
	logger types.Logger
}

// Compile-time assertion that FileStore implements types.StateStore.
var _ types.StateStore = (*FileStore)(nil)

// NewFileStore creates a file-backed state store at the given path.
func NewFileStore(path string, logger types.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the record. A missing file yields an empty record; corrupt
// JSON yields an empty record and a log entry. Load never fails the cycle.
func (s *FileStore) Load(_ context.Context) (*types.RunState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.RunState{}, nil
		}
		s.logger.Warn("state file unreadable, starting from empty record",
			"path", s.path,
			"error", err,
		)
		return &types.RunState{}, nil
	}

	var st types.RunState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("state file corrupt, starting from empty record",
			"path", s.path,
			"error", err,
		)
		return &types.RunState{}, nil
	}

	return &st, nil
}

// Save writes the full record, replacing any prior content. The write goes
// through a temp file and rename so a crash mid-write cannot leave a
// half-written record for the next cycle to read.
func (s *FileStore) Save(_ context.Context, st *types.RunState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to marshal run state", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewAppError(types.ErrCodeStateWrite,
			fmt.Sprintf("failed to create state directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to create temp state file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to write temp state file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.NewAppError(types.ErrCodeStateWrite,
			"failed to close temp state file", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return types.NewAppError(types.ErrCodeStateWrite,
			fmt.Sprintf("failed to replace state file %s", s.path), err)
	}

	return nil
}
