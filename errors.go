package attackforge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoCredentials = errors.New("attackforge: no credentials configured")
	ErrNoBaseURL     = errors.New("attackforge: no base URL configured")

	// ErrUnresolved is matched by every failed resolution, whether the query
	// matched no record or more than one.
	ErrUnresolved = errors.New("attackforge: entity not found or ambiguous")

	ErrUnknownEntityKind = errors.New("attackforge: unknown entity kind")
)

// ResolutionError reports a lookup that did not match exactly one record.
// It matches ErrUnresolved with errors.Is.
type ResolutionError struct {
	Kind  EntityKind
	Count int64
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("attackforge: %s not resolved: query matched %d records", e.Kind, e.Count)
}

// Is reports whether target is ErrUnresolved.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// MissingFieldError names a JSON path that was absent or had the wrong shape.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing or invalid field %q", e.Path)
}

// MalformedResponseError indicates a successful HTTP response whose body did
// not have the expected structure. Err may hold several MissingFieldErrors.
type MalformedResponseError struct {
	Resource string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("attackforge: malformed %s response: %v", e.Resource, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// APIError represents a general AttackForge API error.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("attackforge: API error %d: %s (request_id=%s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("attackforge: API error %d: %s", e.StatusCode, e.Message)
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("attackforge: authentication failed: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotFoundError indicates the requested resource was not found (404).
type NotFoundError struct {
	APIError
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	if e.ResourceType != "" && e.ResourceID != "" {
		return fmt.Sprintf("attackforge: %s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("attackforge: resource not found: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ValidationError indicates invalid request data (400), or an argument
// rejected before any request was sent.
type ValidationError struct {
	APIError
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("attackforge: validation error: %s (fields: %v)", e.Message, e.Fields)
	}
	return fmt.Sprintf("attackforge: validation error: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ValidationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("attackforge: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "attackforge: rate limit exceeded"
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("attackforge: server error %d: %s", e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

func requiredArg(name, value string) error {
	if value == "" {
		return &ValidationError{
			APIError: APIError{Message: name + " cannot be empty"},
		}
	}
	return nil
}

// parseError converts an HTTP response into the appropriate error type.
func parseError(statusCode int, body []byte, headers http.Header) error {
	requestID := headers.Get("X-Request-ID")
	base := APIError{
		StatusCode: statusCode,
		RequestID:  requestID,
	}

	// AttackForge reports failures as {"status": "...", "message": "..."}, so
	// decode only the message; status is taken from the HTTP response.
	var payload struct {
		Message string            `json:"message"`
		Detail  string            `json:"detail"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		base.Message = string(body)
	} else {
		base.Message = payload.Message
		base.Detail = payload.Detail
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusBadRequest:
		validationErr := &ValidationError{APIError: base}
		if len(payload.Fields) > 0 {
			validationErr.Fields = payload.Fields
		}
		return validationErr
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(headers.Get("Retry-After")),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// parseRetryAfter parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
