// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs in forecast cache math.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct using go-playground/validator.
//  5. Apply cross-field checks that tags cannot express (backend
//     requirements, ROI syntax).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"wetwatch/internal/imaging"
	"wetwatch/internal/types"
)

// Load loads and validates the wetwatch configuration from the environment.
// Missing required values yield ErrCodeConfigMissing; malformed values yield
// ErrCodeConfigInvalid. Both are fatal at the driver.
func Load() (*Config, error) {
	// Enforce UTC. Artifact filenames and cache validity windows are all
	// expressed in UTC, and the invoking cron may run under any local zone.
	time.Local = time.UTC

	// godotenv.Load silently succeeds if no .env file exists and does NOT
	// override variables already present in the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		code := types.ErrCodeConfigInvalid
		if strings.Contains(err.Error(), "required key") {
			code = types.ErrCodeConfigMissing
		}
		return nil, types.NewAppError(code, "failed to process environment configuration", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		code := types.ErrCodeConfigInvalid
		if hasMissingField(err) {
			code = types.ErrCodeConfigMissing
		}
		return nil, types.NewAppError(code, "configuration validation failed", err)
	}

	if err := crossChecks(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// hasMissingField reports whether any validation failure is a bare
// "required" violation, which maps to the missing-configuration error code
// rather than the malformed one.
func hasMissingField(err error) bool {
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

// asValidationErrors is a typed errors.As helper kept separate so the loader
// body reads linearly.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}

// crossChecks enforces constraints spanning multiple fields.
func crossChecks(cfg *Config) error {
	if cfg.State.Backend == "postgres" && cfg.State.URL.Unmask() == "" {
		return types.NewAppError(types.ErrCodeConfigMissing,
			"STATE_BACKEND=postgres requires DATABASE_URL", nil)
	}

	if cfg.Artifact.Backend == "s3" && cfg.Artifact.Bucket == "" {
		return types.NewAppError(types.ErrCodeConfigMissing,
			"ARTIFACT_BACKEND=s3 requires ARTIFACT_BUCKET", nil)
	}

	if cfg.Detect.ROI != "" {
		if _, err := imaging.ParseRect(cfg.Detect.ROI); err != nil {
			return types.NewAppError(types.ErrCodeConfigInvalid,
				fmt.Sprintf("DETECT_ROI %q is not a valid region", cfg.Detect.ROI), err)
		}
	}

	return nil
}
