package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "config", err: NewConfigError("store.backend", errors.New("bad")), want: ExitConfig},
		{name: "wrapped config", err: NewCommandError("serve", NewConfigError("", errors.New("bad"))), want: ExitConfig},
		{name: "no completion", err: fmt.Errorf("complete: %w", ErrNoCompletion), want: ExitUnavailable},
		{name: "other", err: NewCommandError("prompt", errors.New("boom")), want: ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	base := errors.New("file missing")

	cfgErr := NewConfigError("store.file.path", base)
	if cfgErr.Error() != "config error in store.file.path: file missing" {
		t.Errorf("ConfigError = %q", cfgErr.Error())
	}
	if !errors.Is(cfgErr, base) {
		t.Error("ConfigError should unwrap to its cause")
	}
	if got := NewConfigError("", base).Error(); got != "config error: file missing" {
		t.Errorf("ConfigError without field = %q", got)
	}

	cmdErr := NewCommandError("import", base)
	if cmdErr.Error() != "command import failed: file missing" || !errors.Is(cmdErr, base) {
		t.Errorf("CommandError = %q", cmdErr.Error())
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatText, "text": FormatText, "json": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestFormatters(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, "Alice: <hi>"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Alice: <hi>\n" {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	if err := NewFormatter(FormatJSON).FormatTo(&buf, map[string]string{"prompt": "<hi>"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"prompt\": \"<hi>\"\n}\n" {
		t.Errorf("json output = %q", buf.String())
	}
}

func TestSetupSignalHandler(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SetupSignalHandler(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("ctx.Err() = %v", ctx.Err())
	}
}
