package types

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Logger defines the structured logging interface used throughout the
// pipeline. It is satisfied by the slog adapter in cmd wiring and by test
// doubles; no component looks up a logger statically.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// FrameSource provides the raw bytes of the current frame for a cycle.
// Implemented by the camera snapshot client and by the file-backed source
// that serves a pre-captured frame supplied on the command line.
type FrameSource interface {
	Acquire(ctx context.Context) ([]byte, error)
}

// ForecastProvider resolves the monitoring location to an hourly forecast
// and returns its ordered period sequence.
type ForecastProvider interface {
	HourlyPeriods(ctx context.Context, lat, lon float64) ([]ForecastPeriod, error)
}

// AlertSink performs fire-and-forget delivery of an alert. Absence of
// configuration is not an error, only a skipped notification.
type AlertSink interface {
	Notify(ctx context.Context, a Alert) error
}

// StateStore persists the single run state record, read at cycle start and
// rewritten wholesale at cycle end. Load must tolerate absence and corruption
// by returning an empty record.
type StateStore interface {
	Load(ctx context.Context) (*RunState, error)
	Save(ctx context.Context, state *RunState) error
}

// ArtifactStore writes named image artifacts (baseline/current/diff,
// optionally timestamp-suffixed).
type ArtifactStore interface {
	Write(ctx context.Context, name string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	// Stat returns the size of the named artifact, or an error if it does
	// not exist.
	Stat(ctx context.Context, name string) (int64, error)
}
