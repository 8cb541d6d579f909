package camera

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wetwatch/internal/config"
	"wetwatch/internal/types"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)        {}
func (testLogger) Warn(string, ...any)        {}
func (testLogger) Error(string, ...any)       {}
func (l testLogger) With(...any) types.Logger { return l }

func snapshotConfig(host string) config.CameraConfig {
	return config.CameraConfig{
		IP:       host,
		User:     types.SecretString("admin"),
		Pass:     types.SecretString("hunter2"),
		Snapshot: "/cgi-bin/snapshot.cgi?channel=1",
	}
}

func TestSnapshotAcquire(t *testing.T) {
	frame := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}

	var gotPath, gotQuery string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, _ = r.BasicAuth()
		w.Write(frame)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	src := NewSnapshotSourceWithHTTP(snapshotConfig(host), srv.Client(), testLogger{})

	data, err := src.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if len(data) != len(frame) {
		t.Errorf("acquired %d bytes, want %d", len(data), len(frame))
	}
	if gotPath != "/cgi-bin/snapshot.cgi" || gotQuery != "channel=1" {
		t.Errorf("requested %s?%s, want snapshot CGI path", gotPath, gotQuery)
	}
	if gotUser != "admin" || gotPass != "hunter2" {
		t.Errorf("basic auth = %s/%s, want configured credentials", gotUser, gotPass)
	}
}

func TestSnapshotAcquireNormalizesPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte{1})
	}))
	defer srv.Close()

	cfg := snapshotConfig(strings.TrimPrefix(srv.URL, "http://"))
	cfg.Snapshot = "snap.cgi"
	src := NewSnapshotSourceWithHTTP(cfg, srv.Client(), testLogger{})

	if _, err := src.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if gotPath != "/snap.cgi" {
		t.Errorf("path = %q, want leading slash added", gotPath)
	}
}

func TestSnapshotAcquireNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := NewSnapshotSourceWithHTTP(snapshotConfig(strings.TrimPrefix(srv.URL, "http://")), srv.Client(), testLogger{})

	_, err := src.Acquire(context.Background())
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeAcquisitionFailed {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeAcquisitionFailed)
	}
}

func TestSnapshotAcquireEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := NewSnapshotSourceWithHTTP(snapshotConfig(strings.TrimPrefix(srv.URL, "http://")), srv.Client(), testLogger{})

	_, err := src.Acquire(context.Background())
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeAcquisitionFailed {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeAcquisitionFailed)
	}
}

func TestFileSourceAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8}, 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := NewFileSource(path).Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if len(data) != 2 {
		t.Errorf("acquired %d bytes, want 2", len(data))
	}
}

func TestFileSourceMissing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.jpg"))

	_, err := src.Acquire(context.Background())
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeArtifactMissing {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeArtifactMissing)
	}
}

func TestFileSourceEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jpg")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileSource(path).Acquire(context.Background())
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeArtifactInvalid {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeArtifactInvalid)
	}
}
