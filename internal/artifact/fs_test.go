package artifact

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"wetwatch/internal/types"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
	if err := store.Write(ctx, "snapshot.jpg", data); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := store.Read(ctx, "snapshot.jpg")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read() = %v, want %v", got, data)
	}

	size, err := store.Stat(ctx, "snapshot.jpg")
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("Stat() = %d, want %d", size, len(data))
	}
}

func TestFSStoreWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	store := NewFSStore(dir)

	if err := store.Write(context.Background(), "diff.png", []byte{1}); err != nil {
		t.Fatalf("Write() into missing directory: %v", err)
	}
}

func TestFSStoreMissingArtifact(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Read(ctx, "baseline.jpg")
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeArtifactMissing {
		t.Errorf("Read() error = %v, want code %s", err, types.ErrCodeArtifactMissing)
	}

	_, err = store.Stat(ctx, "baseline.jpg")
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeArtifactMissing {
		t.Errorf("Stat() error = %v, want code %s", err, types.ErrCodeArtifactMissing)
	}
}

func TestFSStoreOverwrite(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	if err := store.Write(ctx, "diff.png", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, "diff.png", []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := store.Read(ctx, "diff.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("Read() after overwrite = %q, want %q", got, "second")
	}
}
