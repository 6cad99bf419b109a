package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type countingProvider struct {
	values map[string]string
	err    error
	calls  int
}

func (p *countingProvider) GetSecret(_ context.Context, name string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	v, ok := p.values[name]
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}

func (p *countingProvider) Name() string { return "counting" }

func TestEnvProvider_GetSecret(t *testing.T) {
	t.Setenv("LOOM_SECRET_MANCER_KEY", "mk-123")

	p := NewEnvProvider(DefaultEnvPrefix)
	got, err := p.GetSecret(context.Background(), "mancer-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "mk-123" {
		t.Errorf("GetSecret() = %q, want %q", got, "mk-123")
	}

	_, err = p.GetSecret(context.Background(), "absent")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestFileProvider_GetSecret(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kobold-key"), []byte("  kk-1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "open"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// WriteFile honors umask, so force the mode.
	if err := os.Chmod(filepath.Join(dir, "open"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("NewFileProvider() error: %v", err)
	}

	tests := []struct {
		name     string
		secret   string
		want     string
		notFound bool
		wantErr  string
	}{
		{name: "trimmed value", secret: "kobold-key", want: "kk-1"},
		{name: "missing", secret: "absent", notFound: true},
		{name: "insecure permissions", secret: "open", wantErr: "insecure permissions"},
		{name: "traversal", secret: "../etc/passwd", wantErr: "escapes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.GetSecret(context.Background(), tt.secret)
			switch {
			case tt.notFound:
				if !errors.Is(err, ErrSecretNotFound) {
					t.Errorf("expected ErrSecretNotFound, got %v", err)
				}
			case tt.wantErr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want containing %q", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("GetSecret() = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestNewFileProvider_NotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileProvider(path); err == nil {
		t.Error("expected error for non-directory path")
	}
	if _, err := NewFileProvider(filepath.Join(path, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestManager_FallbackOrder(t *testing.T) {
	first := &countingProvider{values: map[string]string{"a": "1"}}
	second := &countingProvider{values: map[string]string{"a": "2", "b": "3"}}
	m := NewManager([]Provider{first, second})

	ctx := context.Background()
	if got, _ := m.GetSecret(ctx, "a"); got != "1" {
		t.Errorf("a = %q, want first provider's value", got)
	}
	if got, _ := m.GetSecret(ctx, "b"); got != "3" {
		t.Errorf("b = %q, want fallback value", got)
	}
	if _, err := m.GetSecret(ctx, "c"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestManager_ProviderFailureStops(t *testing.T) {
	broken := &countingProvider{err: errors.New("permission denied")}
	backup := &countingProvider{values: map[string]string{"a": "1"}}
	m := NewManager([]Provider{broken, backup})

	_, err := m.GetSecret(context.Background(), "a")
	if err == nil || errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected hard failure, got %v", err)
	}
	if backup.calls != 0 {
		t.Errorf("backup provider consulted %d times after a hard failure", backup.calls)
	}
}

func TestManager_Cache(t *testing.T) {
	p := &countingProvider{values: map[string]string{"a": "1"}}
	m := NewManager([]Provider{p}, WithCacheTTL(time.Minute))

	now := time.Unix(1000, 0)
	m.cache.now = func() time.Time { return now }

	ctx := context.Background()
	for range 3 {
		if _, err := m.GetSecret(ctx, "a"); err != nil {
			t.Fatal(err)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1 while cached", p.calls)
	}

	now = now.Add(2 * time.Minute)
	_, _ = m.GetSecret(ctx, "a")
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2 after expiry", p.calls)
	}
}

func TestManager_Resolve(t *testing.T) {
	p := &countingProvider{values: map[string]string{"key": "sk-1", "org": "o-2"}}
	m := NewManager([]Provider{p})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain key untouched", input: " plain ", want: " plain "},
		{name: "whole reference", input: "${secret:key}", want: "sk-1"},
		{name: "embedded references", input: "${secret:org}/${secret: key }", want: "o-2/sk-1"},
		{name: "missing reference", input: "${secret:nope}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Resolve(context.Background(), tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrSecretNotFound) {
					t.Errorf("expected ErrSecretNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactName(t *testing.T) {
	if got := redactName("abc"); got != "***" {
		t.Errorf("short name = %q", got)
	}
	if got := redactName("mancer-key"); got != "ma...ey" {
		t.Errorf("long name = %q", got)
	}
}
