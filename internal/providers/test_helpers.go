package providers

import (
	"testing"
	"time"

	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/providers"
)

// TestClientConfig returns a client configuration suitable for tests.
func TestClientConfig(name string) providers.ClientConfig {
	return providers.ClientConfig{
		Name:                name,
		Timeout:             5 * time.Second,
		RetryBackoff:        time.Millisecond,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConnection returns a connection pointing at url.
func TestConnection(connType, model, url string) *chat.Connection {
	return &chat.Connection{
		ID:    "conn-1",
		Name:  "test connection",
		Type:  connType,
		Model: model,
		URL:   url,
		Key:   " test-key ",
	}
}

// TestSettings returns a settings preset with every sampling field set.
func TestSettings() *chat.Settings {
	return &chat.Settings{
		ID:               "settings-1",
		Name:             "test preset",
		ContextLength:    2048,
		InstructMode:     chat.ModeAlpaca,
		MaxLength:        200,
		MinLength:        5,
		Temperature:      0.7,
		TopP:             0.9,
		TopK:             40,
		TopA:             0.1,
		Typical:          0.95,
		TFS:              0.97,
		MinP:             0.05,
		RepPen:           1.1,
		RepPenRange:      1024,
		RepPenSlope:      0.7,
		PresencePenalty:  0.2,
		FrequencyPenalty: 0.3,
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
