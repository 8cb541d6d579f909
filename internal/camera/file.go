package camera

import (
	"context"
	"fmt"
	"os"

	"wetwatch/internal/types"
)

// FileSource serves a pre-captured frame from disk. Used when the operator
// passes -snapshot to bypass camera acquisition.
type FileSource struct {
	path string
}

// Compile-time assertion that FileSource implements types.FrameSource.
var _ types.FrameSource = (*FileSource)(nil)

// NewFileSource creates a frame source reading from the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Acquire reads the file and returns its raw bytes. A missing or empty file
// is an acquisition error, mirroring the camera source's validation.
func (s *FileSource) Acquire(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrCodeArtifactMissing,
				fmt.Sprintf("snapshot file %s not found", s.path), err)
		}
		return nil, types.NewAppError(types.ErrCodeAcquisitionFailed,
			fmt.Sprintf("failed to read snapshot file %s", s.path), err)
	}
	if len(data) == 0 {
		return nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			fmt.Sprintf("snapshot file %s is empty", s.path), nil)
	}
	return data, nil
}
