// Package types defines the shared domain model for the wetwatch pipeline:
// the run state record, forecast cache, alert payload, and the narrow
// interfaces connecting the orchestrator to its collaborators.
package types

import "time"

// SkipReason records why a cycle terminated before change detection.
type SkipReason string

const (
	// SkipNone means the cycle ran the full detection pipeline.
	SkipNone SkipReason = ""

	// SkipNoRain means the forecast gate saw no precipitation ahead.
	SkipNoRain SkipReason = "no_rain"

	// SkipLightsOn means the lighting classifier invalidated the frame.
	SkipLightsOn SkipReason = "lights_on"
)

// ForecastCache is the persisted forecast verdict reused across cycles until
// its validity window elapses. ValidUntil is monotonically non-decreasing
// across successful refreshes.
type ForecastCache struct {
	RainForecasted     bool      `json:"rain_forecasted"`
	ForecastValidUntil time.Time `json:"forecast_valid_until"`
	LastForecastCheck  time.Time `json:"last_forecast_check"`
}

// Valid reports whether the cached verdict may be reused at the given time.
func (c ForecastCache) Valid(now time.Time) bool {
	return !c.ForecastValidUntil.IsZero() && now.Before(c.ForecastValidUntil)
}

// ForecastPeriod is a single hourly forecast window from the upstream
// weather source. Periods arrive in chronological order.
type ForecastPeriod struct {
	Start                    time.Time `json:"startTime"`
	End                      time.Time `json:"endTime"`
	PrecipitationProbability int       `json:"precipitationProbability"`
}

// RunState is the single durable record of the pipeline. It is loaded (or
// defaulted to empty) at cycle start, mutated in place through the cycle,
// and persisted in full at cycle end, replacing any prior content.
type RunState struct {
	ForecastCache

	CycleID         string     `json:"cycle_id,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
	Skipped         SkipReason `json:"skipped"`
	LightsOn        *bool      `json:"lights_on,omitempty"`
	PercentChanged  *float64   `json:"percent_changed,omitempty"`
	WetnessDetected *bool      `json:"wetness_detected,omitempty"`
}

// Alert is the payload handed to the alert sink on a positive detection.
type Alert struct {
	Message        string    `json:"message"`
	PercentChanged float64   `json:"percent_changed"`
	CycleID        string    `json:"cycle_id"`
	Timestamp      time.Time `json:"timestamp"`
}
