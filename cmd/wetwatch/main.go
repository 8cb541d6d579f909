// Package main is the entrypoint for one wetwatch detection cycle.
//
// The binary is invoked on a schedule (cron or a systemd timer) and runs
// exactly one cycle: forecast gate, frame acquisition, lighting check,
// change detection, alerting, and state persistence. It exits 0 on any
// completed cycle (including skipped ones) and 1 on configuration or
// acquisition preconditions failing.
//
// This file handles dependency wiring and exit-code mapping; all decision
// logic lives in internal/cycle.
package main

import (
	"context"
	"flag"
	"image"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"wetwatch/internal/alert"
	"wetwatch/internal/artifact"
	"wetwatch/internal/camera"
	"wetwatch/internal/config"
	"wetwatch/internal/cycle"
	"wetwatch/internal/forecast"
	"wetwatch/internal/imaging"
	"wetwatch/internal/logging"
	"wetwatch/internal/state"
	"wetwatch/internal/types"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to a pre-captured frame, bypassing camera acquisition")
	flag.Parse()

	if err := run(*snapshotPath); err != nil {
		os.Exit(1)
	}
}

// run wires the cycle's collaborators from configuration and executes it.
// Every returned error has already been logged.
func run(snapshotPath string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		// Config failed, so the configured level is unavailable; report at
		// the default level.
		logging.New("info").Error("configuration error", "error", err)
		return err
	}

	logger := logging.New(cfg.LogLevel)

	states, err := newStateStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("state store initialization failed", "error", err)
		return err
	}

	artifacts := artifact.NewFSStore(cfg.Artifact.Dir)
	archive, err := newArchive(ctx, cfg, artifacts, logger)
	if err != nil {
		logger.Error("artifact archive initialization failed", "error", err)
		return err
	}

	var frames types.FrameSource
	if snapshotPath != "" {
		logger.Info("using pre-captured frame", "path", snapshotPath)
		frames = camera.NewFileSource(snapshotPath)
	} else {
		frames = camera.NewSnapshotSource(cfg.Camera, logger)
	}

	gate := forecast.NewGate(forecast.GateConfig{
		Provider:      forecast.NewClient(cfg.Forecast, logger),
		Latitude:      cfg.Forecast.Latitude,
		Longitude:     cfg.Forecast.Longitude,
		Lookahead:     cfg.Forecast.Lookahead,
		RainThreshold: cfg.Forecast.RainThreshold,
		Logger:        logger,
	})

	var region image.Rectangle
	if cfg.Detect.ROI != "" {
		// Validated during config.Load.
		region, _ = imaging.ParseRect(cfg.Detect.ROI)
	}

	runner := cycle.NewRunner(cycle.RunnerConfig{
		Gate:      gate,
		Frames:    frames,
		Alerts:    alert.NewWebhookSink(cfg.Alert, logger),
		States:    states,
		Artifacts: artifacts,
		Archive:   archive,
		Detect:    cfg.Detect,
		Region:    region,
		Logger:    logger,
	})

	st, err := runner.Run(ctx)
	if err != nil {
		logger.Error("cycle failed", "error", err)
		return err
	}

	logger.Info("cycle complete",
		"skipped", string(st.Skipped),
		"wetness_detected", st.WetnessDetected != nil && *st.WetnessDetected,
	)
	return nil
}

// newStateStore builds the configured state backend.
func newStateStore(ctx context.Context, cfg *config.Config, logger types.Logger) (types.StateStore, error) {
	if cfg.State.Backend != "postgres" {
		return state.NewFileStore(cfg.State.Path, logger), nil
	}

	pool, err := pgxpool.New(ctx, cfg.State.URL.Unmask())
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalid,
			"failed to create database pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalid,
			"failed to ping database", err)
	}

	store := state.NewPostgresStore(pool, cfg.State.MonitorID, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// newArchive builds the store receiving timestamped detection copies. The
// fs backend reuses the canonical artifact store.
func newArchive(ctx context.Context, cfg *config.Config, fallback types.ArtifactStore, logger types.Logger) (types.ArtifactStore, error) {
	if cfg.Artifact.Backend != "s3" {
		return fallback, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Artifact.Region))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalid,
			"failed to load AWS SDK config", err)
	}
	return artifact.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Artifact.Bucket, cfg.Artifact.Prefix, logger), nil
}
