// Package camera acquires the current frame for a cycle, either from the
// camera's snapshot CGI endpoint or from a pre-captured file supplied on
// the command line.
package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wetwatch/internal/config"
	"wetwatch/internal/external"
	"wetwatch/internal/types"
)

// maxSnapshotBytes bounds how large a snapshot we accept. Full-resolution
// stills from consumer cameras are single-digit megabytes.
const maxSnapshotBytes = 32 << 20

// SnapshotSource fetches the current frame over HTTP with basic auth.
type SnapshotSource struct {
	base   *external.BaseClient
	url    string
	user   types.SecretString
	pass   types.SecretString
	logger types.Logger
}

// Compile-time assertion that SnapshotSource implements types.FrameSource.
var _ types.FrameSource = (*SnapshotSource)(nil)

// NewSnapshotSource creates a camera frame source from config with a
// bounded-timeout HTTP client.
func NewSnapshotSource(cfg config.CameraConfig, logger types.Logger) *SnapshotSource {
	return NewSnapshotSourceWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewSnapshotSourceWithHTTP creates a camera frame source with a
// caller-supplied HTTP client, for testing against httptest servers.
func NewSnapshotSourceWithHTTP(cfg config.CameraConfig, httpClient *http.Client, logger types.Logger) *SnapshotSource {
	path := cfg.Snapshot
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &SnapshotSource{
		base:   external.NewBaseClient(httpClient, "camera", external.DefaultRetryPolicy(), "wetwatch/1.0"),
		url:    fmt.Sprintf("http://%s%s", cfg.IP, path),
		user:   cfg.User,
		pass:   cfg.Pass,
		logger: logger,
	}
}

// Acquire downloads the current snapshot and returns its raw bytes. Any
// transport or status failure is an acquisition error, which is fatal for
// the cycle.
func (s *SnapshotSource) Acquire(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeAcquisitionFailed,
			"failed to build snapshot request", err)
	}
	req.SetBasicAuth(s.user.Unmask(), s.pass.Unmask())

	resp, err := s.base.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeAcquisitionFailed,
			"snapshot download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.NewAppError(types.ErrCodeAcquisitionFailed,
			fmt.Sprintf("camera returned %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeAcquisitionFailed,
			"failed to read snapshot body", err)
	}
	if len(data) == 0 {
		return nil, types.NewAppError(types.ErrCodeAcquisitionFailed,
			"camera returned an empty snapshot", nil)
	}

	s.logger.Info("snapshot acquired", "bytes", len(data))
	return data, nil
}
