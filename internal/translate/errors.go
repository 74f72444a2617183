package translate

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyCommand reports a blank command. It is the caller's mistake, never
// the upstream's, and never reaches the provider.
var ErrEmptyCommand = errors.New("translate: command is required")

// UpstreamReason categorizes why a provider call failed. It drives the retry
// decision and the diagnostics surfaced to the client.
type UpstreamReason string

const (
	// ReasonTimeout covers the request deadline expiring.
	ReasonTimeout UpstreamReason = "timeout"

	// ReasonRateLimit covers HTTP 429.
	ReasonRateLimit UpstreamReason = "rate_limit"

	// ReasonAuth covers HTTP 401/403.
	ReasonAuth UpstreamReason = "auth"

	// ReasonServerError covers upstream 5xx.
	ReasonServerError UpstreamReason = "server_error"

	// ReasonInvalidRequest covers upstream 400s.
	ReasonInvalidRequest UpstreamReason = "invalid_request"

	// ReasonBadResponse covers model output that cannot be parsed into the
	// action schema.
	ReasonBadResponse UpstreamReason = "bad_response"

	// ReasonUnknown is the unclassified fallback.
	ReasonUnknown UpstreamReason = "unknown"
)

// IsRetryable reports whether retrying the same request may succeed.
func (r UpstreamReason) IsRetryable() bool {
	switch r {
	case ReasonRateLimit, ReasonServerError:
		return true
	default:
		return false
	}
}

// UpstreamError is a structured failure from the LLM call or its response
// handling. RawResponse carries the unparseable model output for diagnostics.
type UpstreamError struct {
	Reason      UpstreamReason
	Provider    string
	Model       string
	Status      int
	Code        string
	Message     string
	RawResponse string
	Cause       error
}

func (e *UpstreamError) Error() string {
	parts := []string{fmt.Sprintf("[%s]", e.Reason)}
	if e.Provider != "" {
		parts = append(parts, e.Provider)
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Details returns the diagnostic payload for the HTTP error body: the raw
// model output when there is one, otherwise the cause.
func (e *UpstreamError) Details() string {
	if e.RawResponse != "" {
		return e.RawResponse
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// NewUpstreamError wraps a raw provider failure, classifying it from the
// error text.
func NewUpstreamError(provider, model string, cause error) *UpstreamError {
	err := &UpstreamError{
		Provider: provider,
		Model:    model,
		Cause:    cause,
		Reason:   ReasonUnknown,
	}
	if cause != nil {
		err.Message = cause.Error()
		err.Reason = classifyError(cause)
	}
	return err
}

// WithStatus records the HTTP status and reclassifies from it.
func (e *UpstreamError) WithStatus(status int) *UpstreamError {
	e.Status = status
	if reason := classifyStatus(status); reason != ReasonUnknown {
		e.Reason = reason
	}
	return e
}

// WithCode records the provider-specific error code and reclassifies when the
// code is recognized.
func (e *UpstreamError) WithCode(code string) *UpstreamError {
	e.Code = code
	if reason := classifyCode(code); reason != ReasonUnknown {
		e.Reason = reason
	}
	return e
}

// WithMessage sets the human-readable message.
func (e *UpstreamError) WithMessage(msg string) *UpstreamError {
	e.Message = msg
	return e
}

func classifyError(err error) UpstreamReason {
	if err == nil {
		return ReasonUnknown
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout"),
		strings.Contains(s, "deadline exceeded"),
		strings.Contains(s, "context deadline"):
		return ReasonTimeout
	case strings.Contains(s, "rate limit"),
		strings.Contains(s, "rate_limit"),
		strings.Contains(s, "too many requests"),
		strings.Contains(s, "429"):
		return ReasonRateLimit
	case strings.Contains(s, "unauthorized"),
		strings.Contains(s, "invalid api key"),
		strings.Contains(s, "invalid_api_key"),
		strings.Contains(s, "authentication"),
		strings.Contains(s, "401"),
		strings.Contains(s, "403"):
		return ReasonAuth
	case strings.Contains(s, "internal server"),
		strings.Contains(s, "server error"),
		strings.Contains(s, "500"),
		strings.Contains(s, "502"),
		strings.Contains(s, "503"),
		strings.Contains(s, "504"):
		return ReasonServerError
	default:
		return ReasonUnknown
	}
}

func classifyStatus(status int) UpstreamReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonAuth
	case status == http.StatusTooManyRequests:
		return ReasonRateLimit
	case status == http.StatusBadRequest:
		return ReasonInvalidRequest
	case status >= 500:
		return ReasonServerError
	default:
		return ReasonUnknown
	}
}

func classifyCode(code string) UpstreamReason {
	switch strings.ToLower(code) {
	case "rate_limit_error", "rate_limit_exceeded":
		return ReasonRateLimit
	case "authentication_error", "invalid_api_key":
		return ReasonAuth
	case "invalid_request_error":
		return ReasonInvalidRequest
	case "overloaded_error", "server_error", "internal_error", "api_error":
		return ReasonServerError
	default:
		return ReasonUnknown
	}
}

// IsUpstreamError reports whether err wraps an UpstreamError.
func IsUpstreamError(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}

// GetUpstreamError extracts an UpstreamError from an error chain.
func GetUpstreamError(err error) (*UpstreamError, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr, true
	}
	return nil, false
}

// IsRetryable reports whether a raw or wrapped provider error is worth
// retrying.
func IsRetryable(err error) bool {
	if upErr, ok := GetUpstreamError(err); ok {
		return upErr.Reason.IsRetryable()
	}
	return classifyError(err).IsRetryable()
}
