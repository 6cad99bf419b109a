package generic

import (
	"context"
	"errors"
	"net/http"
	"testing"

	testhelpers "construct-hq/loom/internal/providers"
	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/providers"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "https://h.example:8443/api", want: "https://h.example:8443/v1/completions"},
		{raw: "http://localhost:5001", want: "http://localhost:5001/v1/completions"},
		{raw: "https://h:443/x", want: "https://h:443/v1/completions"},
		{raw: "http://10.0.0.2:5000/v1/completions?x=1#frag", want: "http://10.0.0.2:5000/v1/completions"},
		{raw: "https://api.example.com/deep/path/", want: "https://api.example.com/v1/completions"},
		{raw: "  http://host:80/ ", want: "http://host:80/v1/completions"},
		{raw: "localhost:5001", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Endpoint(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Endpoint(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPayload(t *testing.T) {
	settings := testhelpers.TestSettings()
	settings.Extra = map[string]any{"mirostat_mode": 2, "prompt": "should lose"}

	req := &providers.Request{
		Connection: testhelpers.TestConnection("Kobold", "mythomax", "http://localhost"),
		Settings:   settings,
		Prompt:     "the prompt",
		Stop:       []string{"Alice:"},
	}

	body, err := Payload(req)
	testhelpers.AssertNoError(t, err)

	if body["prompt"] != "the prompt" {
		t.Errorf("core prompt must win over settings, got %v", body["prompt"])
	}
	if body["model"] != "mythomax" {
		t.Errorf("model = %v", body["model"])
	}
	if body["mirostat_mode"] != 2 {
		t.Errorf("extra field not forwarded: %v", body["mirostat_mode"])
	}
	if body["rep_pen"] != 1.1 || body["context_length"] != float64(2048) {
		t.Errorf("settings fields not forwarded: %v", body)
	}
	if _, ok := body["_id"]; ok {
		t.Error("_id must not be forwarded")
	}
	if _, ok := body["name"]; ok {
		t.Error("name must not be forwarded")
	}
}

func TestPayload_EmptyStop(t *testing.T) {
	req := &providers.Request{Connection: &chat.Connection{Model: "m"}}
	body, err := Payload(req)
	testhelpers.AssertNoError(t, err)

	stop, ok := body["stop"].([]string)
	if !ok || stop == nil || len(stop) != 0 {
		t.Errorf("stop should be an empty array, got %#v", body["stop"])
	}
}

func TestProvider_Complete(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockCompletionResponse("Hello there", "mythomax"),
	})

	p := NewProvider(testhelpers.TestClientConfig("generic"))
	defer p.Close()

	req := &providers.Request{
		Connection: testhelpers.TestConnection("Kobold", "mythomax", mock.URL()+"/ignored/path"),
		Settings:   testhelpers.TestSettings(),
		Prompt:     "Alice: Hi\nBot:",
		Stop:       []string{"Alice:", "Bot:"},
	}

	raw, err := p.Complete(context.Background(), req)
	testhelpers.AssertNoError(t, err)
	if len(raw) == 0 {
		t.Fatal("expected a response body")
	}

	recorded, ok := mock.LastRequest()
	if !ok {
		t.Fatal("mock received no request")
	}
	if recorded.Method != "POST" || recorded.Path != "/v1/completions" {
		t.Errorf("request = %s %s", recorded.Method, recorded.Path)
	}
	if got := recorded.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("Authorization = %q", got)
	}

	body, err := recorded.JSON()
	testhelpers.AssertNoError(t, err)
	if body["prompt"] != "Alice: Hi\nBot:" || body["temperature"] != 0.7 {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestProvider_Complete_Errors(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	p := NewProvider(testhelpers.TestClientConfig("generic"))
	defer p.Close()

	t.Run("json error body", func(t *testing.T) {
		mock.SetResponse("/v1/completions", testhelpers.MockResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error":{"message":"model not loaded"}}`,
		})
		raw, err := p.Complete(context.Background(), &providers.Request{
			Connection: testhelpers.TestConnection("Kobold", "m", mock.URL()),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(raw) != `{"error":{"message":"model not loaded"}}` {
			t.Errorf("raw = %s", raw)
		}
	})

	t.Run("auth", func(t *testing.T) {
		mock.SetResponse("/v1/completions", testhelpers.MockTextError(http.StatusUnauthorized, "Invalid API key"))
		_, err := p.Complete(context.Background(), &providers.Request{
			Connection: testhelpers.TestConnection("Kobold", "m", mock.URL()),
		})
		var authErr *providers.AuthError
		if !errors.As(err, &authErr) {
			t.Errorf("expected AuthError, got %T: %v", err, err)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := p.Complete(context.Background(), &providers.Request{
			Connection: testhelpers.TestConnection("Kobold", "m", "not a url"),
		})
		var configErr *providers.ConfigError
		if !errors.As(err, &configErr) {
			t.Errorf("expected ConfigError, got %T: %v", err, err)
		}
	})

	t.Run("no connection", func(t *testing.T) {
		_, err := p.Complete(context.Background(), &providers.Request{})
		testhelpers.AssertError(t, err)
	})
}
