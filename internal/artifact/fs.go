// Package artifact stores the pipeline's image artifacts: the baseline,
// the current snapshot, the canonical difference mask, and the timestamped
// copies retained for each positive detection.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wetwatch/internal/types"
)

// FSStore writes artifacts to a fixed local directory. This is the default
// backend and always holds the canonical baseline/snapshot/diff files the
// detector reads.
type FSStore struct {
	dir string
}

// Compile-time assertion that FSStore implements types.ArtifactStore.
var _ types.ArtifactStore = (*FSStore)(nil)

// NewFSStore creates a filesystem artifact store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

// Write stores the named artifact, creating the directory if needed.
func (s *FSStore) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("failed to create artifact directory %s", s.dir), err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("failed to write artifact %s", path), err)
	}
	return nil
}

// Read returns the named artifact's bytes.
func (s *FSStore) Read(_ context.Context, name string) ([]byte, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrCodeArtifactMissing,
				fmt.Sprintf("%s not found", path), err)
		}
		return nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			fmt.Sprintf("failed to read artifact %s", path), err)
	}
	return data, nil
}

// Stat returns the size of the named artifact.
func (s *FSStore) Stat(_ context.Context, name string) (int64, error) {
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, types.NewAppError(types.ErrCodeArtifactMissing,
				fmt.Sprintf("%s not found", path), err)
		}
		return 0, types.NewAppError(types.ErrCodeArtifactInvalid,
			fmt.Sprintf("failed to stat artifact %s", path), err)
	}
	return info.Size(), nil
}
