package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError(t *testing.T) {
	err := NewAuthError("test auth error")

	expected := "authentication failed: test auth error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	// Test Is method
	target := NewAuthError("target")
	if !err.Is(target) {
		t.Error("Expected error to be auth error type")
	}

	// Test Is with different type
	other := NewAPIError(400, "test", "other error")
	if err.Is(other) {
		t.Error("Expected error not to match different type")
	}

	// Test Is with standard errors
	stdErr := errors.New("standard error")
	if err.Is(stdErr) {
		t.Error("Expected error not to match standard error")
	}
}

func TestAuthError_EmptyMessage(t *testing.T) {
	err := NewAuthError("")

	expected := "authentication failed: check the configured API key"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestAuthError_SentinelMatch(t *testing.T) {
	err := NewAuthError("cookies")

	if !errors.Is(err, ErrAuthFailed) {
		t.Error("Expected AuthError to match ErrAuthFailed sentinel")
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "chat/completions", "test API error")

	expected := "API error [400] at chat/completions: test API error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestAPIError_NoStatusCode(t *testing.T) {
	err := NewAPIError(0, "chat/completions", "connection refused")

	expected := "API error at chat/completions: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestStreamError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStreamError("reading chunk", cause)

	expected := "stream error: reading chunk: connection reset"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrStreamFailed) {
		t.Error("Expected StreamError to match ErrStreamFailed sentinel")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected StreamError to unwrap to its cause")
	}
}

func TestStreamError_NoCause(t *testing.T) {
	err := NewStreamError("producer closed unexpectedly", nil)

	expected := "stream error: producer closed unexpectedly"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("test timeout error")

	expected := "request timed out: test timeout error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestTimeoutError_EmptyMessage(t *testing.T) {
	err := NewTimeoutError("")

	expected := "request timed out"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"auth error", NewAuthError("expired"), true},
		{"sentinel", ErrAuthFailed, true},
		{"wrapped sentinel", fmt.Errorf("request failed: %w", ErrAuthFailed), true},
		{"api error 401", NewAPIError(401, "chat/completions", "unauthorized"), true},
		{"api error 403", NewAPIError(403, "chat/completions", "forbidden"), true},
		{"api error 500", NewAPIError(500, "chat/completions", "server error"), false},
		{"unrelated error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsStreamError(t *testing.T) {
	if IsStreamError(nil) {
		t.Error("IsStreamError(nil) should be false")
	}

	if !IsStreamError(NewStreamError("mid-stream", nil)) {
		t.Error("Expected StreamError to be detected")
	}

	wrapped := fmt.Errorf("turn failed: %w", NewStreamError("mid-stream", nil))
	if !IsStreamError(wrapped) {
		t.Error("Expected wrapped StreamError to be detected")
	}

	if IsStreamError(errors.New("other")) {
		t.Error("Unrelated error should not be a stream error")
	}
}
