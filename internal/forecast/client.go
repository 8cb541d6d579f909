// Package forecast implements the rain gate: an NWS-style hourly forecast
// client and the cached evaluation that decides whether a detection cycle
// should run at all.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wetwatch/internal/config"
	"wetwatch/internal/external"
	"wetwatch/internal/types"
)

// maxForecastBodyRead caps how much of an upstream response is read. Hourly
// forecast payloads are well under this; anything larger is malformed.
const maxForecastBodyRead = 1 << 20

// Client resolves geographic coordinates to an hourly forecast endpoint and
// fetches its ordered period sequence. The lookup is the NWS two-step:
// /points/{lat},{lon} yields the hourly forecast URL, which yields periods.
type Client struct {
	base    *external.BaseClient
	baseURL string
	logger  types.Logger
}

// Compile-time assertion that Client implements types.ForecastProvider.
var _ types.ForecastProvider = (*Client)(nil)

// NewClient creates a forecast client with a bounded-timeout HTTP client
// wrapped in the standard resilience layer.
func NewClient(cfg config.ForecastConfig, logger types.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return NewClientWithHTTP(cfg, httpClient, logger)
}

// NewClientWithHTTP creates a forecast client with a caller-supplied HTTP
// client. This constructor exists for testing against httptest servers.
func NewClientWithHTTP(cfg config.ForecastConfig, httpClient *http.Client, logger types.Logger) *Client {
	return &Client{
		base:    external.NewBaseClient(httpClient, "forecast", external.DefaultRetryPolicy(), cfg.UserAgent),
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// pointsResponse is the subset of the points lookup we consume.
type pointsResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

// hourlyResponse is the subset of the hourly forecast we consume. The
// precipitation probability value is nullable upstream; a null reads as 0.
type hourlyResponse struct {
	Properties struct {
		Periods []struct {
			StartTime                  time.Time `json:"startTime"`
			EndTime                    time.Time `json:"endTime"`
			ProbabilityOfPrecipitation struct {
				Value *int `json:"value"`
			} `json:"probabilityOfPrecipitation"`
		} `json:"periods"`
	} `json:"properties"`
}

// HourlyPeriods performs the two-step lookup and returns the chronological
// period sequence for the given coordinates.
func (c *Client) HourlyPeriods(ctx context.Context, lat, lon float64) ([]types.ForecastPeriod, error) {
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)

	var points pointsResponse
	if err := c.getJSON(ctx, pointsURL, &points); err != nil {
		return nil, err
	}
	if points.Properties.ForecastHourly == "" {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast,
			"points lookup returned no hourly forecast endpoint", nil)
	}

	var hourly hourlyResponse
	if err := c.getJSON(ctx, points.Properties.ForecastHourly, &hourly); err != nil {
		return nil, err
	}

	periods := make([]types.ForecastPeriod, 0, len(hourly.Properties.Periods))
	for _, p := range hourly.Properties.Periods {
		prob := 0
		if p.ProbabilityOfPrecipitation.Value != nil {
			prob = *p.ProbabilityOfPrecipitation.Value
		}
		periods = append(periods, types.ForecastPeriod{
			Start:                    p.StartTime,
			End:                      p.EndTime,
			PrecipitationProbability: prob,
		})
	}

	return periods, nil
}

// getJSON fetches the URL through the resilience layer and decodes the
// response into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamForecast,
			fmt.Sprintf("failed to build forecast request for %s", url), err)
	}
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamForecast,
			fmt.Sprintf("forecast request to %s failed", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.NewAppError(types.ErrCodeUpstreamForecast,
			fmt.Sprintf("forecast endpoint %s returned %d", url, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForecastBodyRead))
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamForecast,
			"failed to read forecast response", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamForecast,
			"failed to parse forecast response", err)
	}

	return nil
}
