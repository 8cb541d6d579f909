package types

import "fmt"

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants. Components MUST use these constants instead
// of hardcoded strings so the driver can map outcomes to exit codes.
const (
	// Configuration (fatal before any cycle logic runs)
	ErrCodeConfigMissing ErrorCode = "config_missing_required"
	ErrCodeConfigInvalid ErrorCode = "config_invalid"

	// Acquisition (fatal for the current cycle)
	ErrCodeArtifactMissing   ErrorCode = "artifact_missing"
	ErrCodeArtifactInvalid   ErrorCode = "artifact_invalid"
	ErrCodeAcquisitionFailed ErrorCode = "acquisition_failed"

	// Upstream (recovered locally, surfaced in logs only)
	ErrCodeUpstreamForecast    ErrorCode = "upstream_forecast_unavailable"
	ErrCodeUpstreamAlert       ErrorCode = "upstream_alert_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"

	// State store (recovered locally)
	ErrCodeStateCorrupt ErrorCode = "state_corrupt"
	ErrCodeStateWrite   ErrorCode = "state_write_failed"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// Fatal reports whether an error code must terminate the process with a
// non-zero exit status. Only configuration and acquisition errors qualify;
// everything else degrades to a safe default inside the cycle.
func (c ErrorCode) Fatal() bool {
	switch c {
	case ErrCodeConfigMissing, ErrCodeConfigInvalid,
		ErrCodeArtifactMissing, ErrCodeArtifactInvalid,
		ErrCodeAcquisitionFailed:
		return true
	}
	return false
}

// AppError is the standard application error type. All domain errors are
// expressed as AppError to enable consistent formatting, exit-code mapping,
// and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain
// errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}
