// Package errors provides custom error types for the helpchat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrTurnInFlight    = errors.New("a turn is already in flight")
	ErrStreamFailed    = errors.New("response stream failed")
	ErrInvalidResponse = errors.New("invalid response format")
)

// AuthError represents an authentication failure
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: check the configured API key"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// APIError represents an API request failure
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// StreamError represents a failure in the middle of a response stream.
// Fatal to the current turn only; the synchronizer absorbs it at the
// turn boundary.
type StreamError struct {
	Message string
	Cause   error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stream error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("stream error: %s", e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *StreamError) Is(target error) bool {
	if target == ErrStreamFailed {
		return true
	}
	_, ok := target.(*StreamError)
	return ok
}

// NewStreamError creates a new StreamError
func NewStreamError(message string, cause error) *StreamError {
	return &StreamError{Message: message, Cause: cause}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// IsAuthError reports whether err is an authentication failure of any shape.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthFailed) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsStreamError reports whether err is a mid-stream failure.
func IsStreamError(err error) bool {
	return err != nil && errors.Is(err, ErrStreamFailed)
}
