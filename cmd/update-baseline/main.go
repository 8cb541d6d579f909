// Package main captures a fresh frame from the camera and installs it as
// the known-dry baseline, backing up the previous baseline first. Run it
// when the monitored surface is verifiably dry and the framing is final.
package main

import (
	"context"
	"os"

	"wetwatch/internal/artifact"
	"wetwatch/internal/camera"
	"wetwatch/internal/config"
	"wetwatch/internal/cycle"
	"wetwatch/internal/logging"
)

// backupName is where the previous baseline is kept. One generation of
// backup is enough to recover from an accidental update.
const backupName = cycle.BaselineName + ".bak"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("configuration error", "error", err)
		return err
	}

	logger := logging.New(cfg.LogLevel)
	artifacts := artifact.NewFSStore(cfg.Artifact.Dir)

	data, err := camera.NewSnapshotSource(cfg.Camera, logger).Acquire(ctx)
	if err != nil {
		logger.Error("failed to capture baseline frame", "error", err)
		return err
	}

	// Back up the existing baseline if present.
	if prev, err := artifacts.Read(ctx, cycle.BaselineName); err == nil {
		if err := artifacts.Write(ctx, backupName, prev); err != nil {
			logger.Error("failed to back up previous baseline", "error", err)
			return err
		}
		logger.Info("previous baseline backed up", "name", backupName)
	}

	if err := artifacts.Write(ctx, cycle.BaselineName, data); err != nil {
		logger.Error("failed to install baseline", "error", err)
		return err
	}

	logger.Info("baseline updated", "name", cycle.BaselineName, "bytes", len(data))
	return nil
}
