package forecast

import (
	"context"
	"time"

	"wetwatch/internal/types"
)

// Defaults for the gate's scan parameters.
const (
	DefaultLookahead     = 6 * time.Hour
	DefaultRainThreshold = 50
)

// Gate decides, using the persisted forecast cache, whether precipitation
// is expected soon. Fresh data is fetched only when the cache is stale, and
// any upstream failure fails closed: no rain, no alert.
type Gate struct {
	provider      types.ForecastProvider
	lat, lon      float64
	lookahead     time.Duration
	rainThreshold int
	clock         types.Clock
	logger        types.Logger
}

// GateConfig wires a Gate's collaborators and tuning.
type GateConfig struct {
	Provider      types.ForecastProvider
	Latitude      float64
	Longitude     float64
	Lookahead     time.Duration
	RainThreshold int
	Clock         types.Clock
	Logger        types.Logger
}

// NewGate creates a forecast gate. Zero-valued tuning fields fall back to
// the defaults.
func NewGate(cfg GateConfig) *Gate {
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}
	if cfg.RainThreshold <= 0 {
		cfg.RainThreshold = DefaultRainThreshold
	}
	if cfg.Clock == nil {
		cfg.Clock = types.RealClock{}
	}
	return &Gate{
		provider:      cfg.Provider,
		lat:           cfg.Latitude,
		lon:           cfg.Longitude,
		lookahead:     cfg.Lookahead,
		rainThreshold: cfg.RainThreshold,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
	}
}

// Evaluate returns whether rain is expected within the lookahead horizon,
// plus the updated cache record.
//
// While the cache is still valid, the cached verdict is returned unchanged
// and no network access is performed. Otherwise the provider is consulted:
// periods are scanned in chronological order, any period starting at or
// before now+lookahead with precipitation probability at or above the rain
// threshold marks rain, and scanning stops at the first period past the
// horizon. The new validity window ends at the latest period end observed
// during the scan (or now if none were observed).
//
// On provider failure the verdict is false and the cached verdict and
// validity window are left untouched. LastForecastCheck always advances.
func (g *Gate) Evaluate(ctx context.Context, cache types.ForecastCache) (bool, types.ForecastCache) {
	now := g.clock.Now()

	updated := cache
	updated.LastForecastCheck = now

	if cache.Valid(now) {
		g.logger.Info("forecast cache valid, reusing verdict",
			"rain_forecasted", cache.RainForecasted,
			"valid_until", cache.ForecastValidUntil,
		)
		return cache.RainForecasted, updated
	}

	periods, err := g.provider.HourlyPeriods(ctx, g.lat, g.lon)
	if err != nil {
		g.logger.Warn("forecast fetch failed, assuming no rain",
			"error", err,
		)
		return false, updated
	}

	horizon := now.Add(g.lookahead)
	rain := false
	validUntil := now

	for _, p := range periods {
		if p.Start.After(horizon) {
			break
		}
		if p.End.After(validUntil) {
			validUntil = p.End
		}
		if p.PrecipitationProbability >= g.rainThreshold {
			rain = true
		}
	}

	updated.RainForecasted = rain
	// Validity is monotonically non-decreasing across successful refreshes.
	if validUntil.After(updated.ForecastValidUntil) {
		updated.ForecastValidUntil = validUntil
	}

	g.logger.Info("forecast refreshed",
		"rain_forecasted", rain,
		"periods_scanned", len(periods),
		"valid_until", updated.ForecastValidUntil,
	)

	return rain, updated
}
