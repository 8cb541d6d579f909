// Package cycle implements the per-invocation orchestrator: forecast gate,
// frame acquisition, lighting check, change detection, and the alert and
// persistence side effects of the verdict. One invocation runs exactly one
// cycle and returns; scheduling is external.
package cycle

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"

	"wetwatch/internal/config"
	"wetwatch/internal/detect"
	"wetwatch/internal/imaging"
	"wetwatch/internal/types"
)

// Canonical artifact names. The baseline must exist before a cycle runs;
// the snapshot and diff are overwritten each full cycle. The snapshot's
// extension follows the acquired frame's encoding.
const (
	BaselineName = "baseline.jpg"
	SnapshotBase = "snapshot"
	DiffName     = "diff.png"
)

// timestampLayout is the UTC timestamp embedded in per-detection artifact
// names. No colons, so names stay filesystem-safe everywhere.
const timestampLayout = "20060102T150405Z"

// RainGate is the forecast gate contract consumed by the runner.
type RainGate interface {
	Evaluate(ctx context.Context, cache types.ForecastCache) (bool, types.ForecastCache)
}

// Runner sequences one detection cycle.
type Runner struct {
	gate      RainGate
	frames    types.FrameSource
	alerts    types.AlertSink
	states    types.StateStore
	artifacts types.ArtifactStore
	archive   types.ArtifactStore
	detectCfg config.DetectConfig
	region    image.Rectangle
	clock     types.Clock
	logger    types.Logger
}

// RunnerConfig wires the runner's collaborators.
type RunnerConfig struct {
	Gate   RainGate
	Frames types.FrameSource
	Alerts types.AlertSink
	States types.StateStore

	// Artifacts holds the canonical baseline/snapshot/diff files.
	Artifacts types.ArtifactStore

	// Archive receives the timestamped copies of positive detections.
	// Nil means Artifacts doubles as the archive.
	Archive types.ArtifactStore

	Detect config.DetectConfig

	// Region is the parsed region of interest. The zero rectangle means
	// the full frame.
	Region image.Rectangle

	Clock  types.Clock
	Logger types.Logger
}

// NewRunner creates a cycle runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = types.RealClock{}
	}
	if cfg.Archive == nil {
		cfg.Archive = cfg.Artifacts
	}
	return &Runner{
		gate:      cfg.Gate,
		frames:    cfg.Frames,
		alerts:    cfg.Alerts,
		states:    cfg.States,
		artifacts: cfg.Artifacts,
		archive:   cfg.Archive,
		detectCfg: cfg.Detect,
		region:    cfg.Region,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
}

// Run executes one cycle and returns the final run state record. A non-nil
// error is always a fatal precondition (acquisition or artifact failure);
// forecast, alert, and state-store failures degrade inside the cycle.
func (r *Runner) Run(ctx context.Context) (*types.RunState, error) {
	now := r.clock.Now()
	cycleID := uuid.New().String()
	ctx = types.WithCycleID(ctx, cycleID)
	logger := r.logger.With("cycle_id", cycleID)

	st, err := r.states.Load(ctx)
	if err != nil {
		// The store contract tolerates absence and corruption; anything
		// else still must not fail the cycle.
		logger.Warn("state load failed, starting from empty record", "error", err)
		st = &types.RunState{}
	}
	st.CycleID = cycleID
	st.Timestamp = now
	st.Skipped = types.SkipNone
	st.LightsOn = nil
	st.PercentChanged = nil
	st.WetnessDetected = nil

	rain, cache := r.gate.Evaluate(ctx, st.ForecastCache)
	st.ForecastCache = cache
	if !rain {
		logger.Info("no rain forecasted, skipping detection")
		st.Skipped = types.SkipNoRain
		r.persist(ctx, logger, st)
		return st, nil
	}

	frameBytes, err := r.frames.Acquire(ctx)
	if err != nil {
		return st, err
	}
	frameExt := imaging.Ext(frameBytes)
	if err := r.artifacts.Write(ctx, SnapshotBase+frameExt, frameBytes); err != nil {
		// The frame is already in memory; a failed canonical write loses
		// the record copy, not the cycle.
		logger.Warn("failed to store snapshot artifact", "error", err)
	}

	baseline, current, err := r.loadFrames(ctx, frameBytes)
	if err != nil {
		return st, err
	}

	// The region is expressed in baseline coordinates; bring a mismatched
	// current frame into that space before any region-relative check.
	if current.Width() != baseline.Width() || current.Height() != baseline.Height() {
		current = current.Resize(baseline.Width(), baseline.Height())
	}

	lit := current
	if r.region != (image.Rectangle{}) {
		lit = current.Crop(r.region)
	}
	if detect.Lit(lit, r.detectCfg.LightsThreshold) {
		logger.Info("artificial lighting detected, skipping detection",
			"mean_intensity", lit.Mean(),
		)
		lightsOn := true
		st.LightsOn = &lightsOn
		st.Skipped = types.SkipLightsOn
		r.persist(ctx, logger, st)
		return st, nil
	}

	mask, pct := detect.Diff(baseline, current, detect.Options{
		Region:            r.region,
		BinarizeThreshold: uint8(r.detectCfg.BinarizeThreshold),
	})
	lightsOn := false
	st.LightsOn = &lightsOn
	st.PercentChanged = &pct

	wet := detect.Wet(pct, r.detectCfg.WetnessThreshold)
	st.WetnessDetected = &wet

	maskPNG, encErr := mask.EncodePNG()
	if encErr != nil {
		logger.Error("failed to encode difference mask", "error", encErr)
	}

	if wet {
		msg := fmt.Sprintf("wetness detected: %.2f%% of pixels changed", pct)
		logger.Warn(msg, "percent_changed", pct)

		if err := r.alerts.Notify(ctx, types.Alert{
			Message:        msg,
			PercentChanged: pct,
			CycleID:        cycleID,
			Timestamp:      now,
		}); err != nil {
			logger.Error("alert delivery failed", "error", err)
		}

		// Each positive detection is individually retrievable.
		ts := now.UTC().Format(timestampLayout)
		if err := r.archive.Write(ctx, SnapshotBase+"_"+ts+frameExt, frameBytes); err != nil {
			logger.Warn("failed to archive snapshot", "error", err)
		}
		if encErr == nil {
			if err := r.archive.Write(ctx, "diff_"+ts+".png", maskPNG); err != nil {
				logger.Warn("failed to archive difference mask", "error", err)
			}
		}
	} else {
		logger.Info(fmt.Sprintf("no wetness: %.2f%% of pixels changed", pct),
			"percent_changed", pct,
		)
	}

	if encErr == nil {
		if err := r.artifacts.Write(ctx, DiffName, maskPNG); err != nil {
			logger.Warn("failed to store difference mask", "error", err)
		}
	}

	r.persist(ctx, logger, st)
	return st, nil
}

// loadFrames validates and decodes the baseline and current frames. All
// failures here are fatal acquisition preconditions.
func (r *Runner) loadFrames(ctx context.Context, frameBytes []byte) (baseline, current *imaging.Frame, err error) {
	size, err := r.artifacts.Stat(ctx, BaselineName)
	if err != nil {
		return nil, nil, err
	}
	if size == 0 {
		return nil, nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			fmt.Sprintf("%s is empty", BaselineName), nil)
	}
	if len(frameBytes) == 0 {
		return nil, nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			"current frame is empty", nil)
	}

	baselineBytes, err := r.artifacts.Read(ctx, BaselineName)
	if err != nil {
		return nil, nil, err
	}

	baseline, err = imaging.Decode(baselineBytes)
	if err != nil {
		return nil, nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			fmt.Sprintf("%s could not be decoded", BaselineName), err)
	}
	current, err = imaging.Decode(frameBytes)
	if err != nil {
		return nil, nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			"current frame could not be decoded", err)
	}

	return baseline, current, nil
}

// persist writes the run state record. Persistence failures degrade: the
// cycle's verdict stands and the failure surfaces only in logs.
func (r *Runner) persist(ctx context.Context, logger types.Logger, st *types.RunState) {
	if err := r.states.Save(ctx, st); err != nil {
		logger.Error("failed to persist run state", "error", err)
	}
}
