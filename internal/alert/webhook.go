// Package alert delivers the wetness alert as a single webhook-style HTTP
// POST. Delivery is fire-and-forget: an unconfigured sink skips silently,
// and a failed delivery is logged without failing the cycle.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"wetwatch/internal/config"
	"wetwatch/internal/types"
)

// maxResponseBodyRead limits how much of a response body we read for error
// messages.
const maxResponseBodyRead = 4096

// WebhookSink posts alert payloads to a configured URL, optionally signing
// them with HMAC-SHA256 so the receiver can verify origin.
type WebhookSink struct {
	url        string
	secret     types.SecretString
	userAgent  string
	httpClient *http.Client
	logger     types.Logger
	clock      types.Clock
}

// Compile-time assertion that WebhookSink implements types.AlertSink.
var _ types.AlertSink = (*WebhookSink)(nil)

// NewWebhookSink creates an alert sink from config. An empty webhook URL is
// valid: Notify becomes a no-op that logs the skipped delivery.
func NewWebhookSink(cfg config.AlertConfig, logger types.Logger) *WebhookSink {
	return NewWebhookSinkWithClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWebhookSinkWithClient creates an alert sink with a caller-supplied HTTP
// client, for testing.
func NewWebhookSinkWithClient(cfg config.AlertConfig, httpClient *http.Client, logger types.Logger) *WebhookSink {
	return &WebhookSink{
		url:        cfg.WebhookURL,
		secret:     cfg.Secret,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		logger:     logger,
		clock:      types.RealClock{},
	}
}

// SetClock overrides the clock for testing signature timestamps.
func (s *WebhookSink) SetClock(c types.Clock) {
	s.clock = c
}

// Notify delivers the alert. Errors are returned for the caller to log;
// the orchestrator treats them as non-fatal and completes the cycle with
// its true verdict regardless.
func (s *WebhookSink) Notify(ctx context.Context, a types.Alert) error {
	if s.url == "" {
		s.logger.Info("no alert webhook configured, skipping notification",
			"cycle_id", a.CycleID,
		)
		return nil
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to marshal alert payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamAlert,
			"failed to build alert request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if cycleID := types.GetCycleID(ctx); cycleID != "" {
		req.Header.Set("X-Wetwatch-Cycle", cycleID)
	}

	if s.secret.Unmask() != "" {
		req.Header.Set("X-Wetwatch-Signature", Sign(payload, s.secret.Unmask(), s.clock.Now()))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamAlert,
			"alert delivery failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))
		return types.NewAppError(types.ErrCodeUpstreamAlert,
			fmt.Sprintf("alert endpoint returned %d: %s", resp.StatusCode, truncate(body)), nil)
	}

	s.logger.Info("alert delivered",
		"status", resp.StatusCode,
		"cycle_id", a.CycleID,
	)
	return nil
}

// truncate shortens a response body for log/error inclusion.
func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
