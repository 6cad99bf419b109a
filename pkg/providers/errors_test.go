package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestProviderError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &ProviderError{Provider: "mancer", StatusCode: 500, Message: "internal error"}
		expected := `provider "mancer" error (status 500): internal error`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &ProviderError{Provider: "generic", Message: "request failed", Cause: cause}
		if !errors.Is(err, cause) {
			t.Error("expected error to wrap cause")
		}
	})
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Provider: "mancer", RetryAfter: 30 * time.Second, Message: "slow down"}
	if !strings.Contains(err.Error(), "retry after 30s") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	withTimeout := &TimeoutError{Provider: "generic", Timeout: 10 * time.Second}
	if !strings.Contains(withTimeout.Error(), "timeout after 10s") {
		t.Errorf("unexpected message: %q", withTimeout.Error())
	}

	cancelled := &TimeoutError{Provider: "generic", Cause: context.Canceled}
	if !errors.Is(cancelled, context.Canceled) {
		t.Error("expected error to wrap context.Canceled")
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&AuthError{}, "auth"},
		{&RateLimitError{}, "rate_limit"},
		{&TimeoutError{}, "timeout"},
		{&ParseError{}, "parse"},
		{&ConfigError{}, "config"},
		{&ProviderError{StatusCode: 502}, "status"},
		{&ProviderError{}, "network"},
		{fmt.Errorf("wrapped: %w", &AuthError{}), "auth"},
		{errors.New("other"), "unknown"},
	}

	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
