// Package config defines the global configuration structure for the wetwatch
// pipeline. Configuration is loaded once at process start and is immutable
// thereafter. It follows 12-Factor App principles by strictly separating code
// from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the process to exit
// non-zero before any cycle logic runs (fail fast).
package config

import (
	"time"

	"wetwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the pipeline. It is
// populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"prod" validate:"oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Camera   CameraConfig
	Forecast ForecastConfig
	Detect   DetectConfig
	Alert    AlertConfig
	State    StateConfig
	Artifact ArtifactConfig
}

// CameraConfig holds the snapshot endpoint location and credentials.
type CameraConfig struct {
	IP       string        `envconfig:"CAMERA_IP" validate:"required"`
	User     SecretString  `envconfig:"CAMERA_USER" validate:"required"`
	Pass     SecretString  `envconfig:"CAMERA_PASS" validate:"required"`
	Snapshot string        `envconfig:"CAMERA_SNAPSHOT_PATH" default:"/cgi-bin/snapshot.cgi?channel=1"`
	Timeout  time.Duration `envconfig:"CAMERA_TIMEOUT" default:"10s"`
}

// ForecastConfig holds the monitored location and forecast gate tuning.
type ForecastConfig struct {
	Latitude  float64 `envconfig:"LOCATION_LAT" required:"true" validate:"latitude"`
	Longitude float64 `envconfig:"LOCATION_LON" required:"true" validate:"longitude"`

	BaseURL       string        `envconfig:"FORECAST_BASE_URL" default:"https://api.weather.gov" validate:"url"`
	Lookahead     time.Duration `envconfig:"FORECAST_LOOKAHEAD" default:"6h"`
	RainThreshold int           `envconfig:"FORECAST_RAIN_THRESHOLD" default:"50" validate:"min=0,max=100"`
	Timeout       time.Duration `envconfig:"FORECAST_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"FORECAST_USER_AGENT" default:"wetwatch/1.0 (wetness monitor)"`
}

// DetectConfig holds the image comparison thresholds and the region of
// interest. The ROI is deployment-specific framing (sky bands, timestamp
// overlays) and is never baked into the detector.
type DetectConfig struct {
	BinarizeThreshold int     `envconfig:"DETECT_BINARIZE_THRESHOLD" default:"30" validate:"min=0,max=255"`
	WetnessThreshold  float64 `envconfig:"DETECT_WETNESS_THRESHOLD" default:"2.5" validate:"min=0,max=100"`
	LightsThreshold   float64 `envconfig:"DETECT_LIGHTS_THRESHOLD" default:"100" validate:"min=0,max=255"`

	// ROI is "x0,y0,x1,y1" in pixel coordinates of the baseline frame.
	// Empty means the full frame.
	ROI string `envconfig:"DETECT_ROI"`
}

// AlertConfig holds outbound webhook alert settings. An empty URL disables
// alerting without being a configuration error.
type AlertConfig struct {
	WebhookURL string        `envconfig:"ALERT_WEBHOOK_URL" validate:"omitempty,url"`
	Secret     SecretString  `envconfig:"ALERT_WEBHOOK_SECRET"`
	Timeout    time.Duration `envconfig:"ALERT_TIMEOUT" default:"10s"`
	UserAgent  string        `envconfig:"ALERT_USER_AGENT" default:"Wetwatch-Alert/1.0"`
}

// StateConfig selects and configures the run state backend.
type StateConfig struct {
	Backend   string       `envconfig:"STATE_BACKEND" default:"file" validate:"oneof=file postgres"`
	Path      string       `envconfig:"STATE_PATH" default:"data/state.json"`
	URL       SecretString `envconfig:"DATABASE_URL"`
	MonitorID string       `envconfig:"MONITOR_ID" default:"default"`
}

// ArtifactConfig selects and configures where timestamped detection
// artifacts are retained. The canonical baseline/snapshot/diff files always
// live in Dir; the s3 backend additionally receives the per-detection copies.
type ArtifactConfig struct {
	Backend string `envconfig:"ARTIFACT_BACKEND" default:"fs" validate:"oneof=fs s3"`
	Dir     string `envconfig:"DATA_DIR" default:"data"`
	Bucket  string `envconfig:"ARTIFACT_BUCKET"`
	Prefix  string `envconfig:"ARTIFACT_PREFIX" default:"wetwatch/"`
	Region  string `envconfig:"AWS_REGION" default:"us-east-1"`
}
