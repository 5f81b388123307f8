package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(redact bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), redact: redact}, logs
}

func TestRedactsSecretKeys(t *testing.T) {
	l, logs := observed(true)
	l.Info("provider ready", "api_key", "sk-123", "model", "gpt-4o-mini")

	entry := logs.All()[0]
	fields := entry.ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Errorf("api_key = %v, want redacted", fields["api_key"])
	}
	if fields["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want passthrough", fields["model"])
	}
}

func TestHashesUserID(t *testing.T) {
	l, logs := observed(true)
	l.Info("attempt recorded", "user_id", "alice")

	got, _ := logs.All()[0].ContextMap()["user_id"].(string)
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Errorf("user_id = %q, want 12-char hash", got)
	}
}

func TestRedactionDisabled(t *testing.T) {
	l, logs := observed(false)
	l.With("user_id", "alice").Warn("fallback", "api_key", "sk-1")

	fields := logs.All()[0].ContextMap()
	if fields["user_id"] != "alice" || fields["api_key"] != "sk-1" {
		t.Errorf("fields = %v, want untouched", fields)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := Nop()
	if OrNop(l) != l {
		t.Fatal("OrNop should return the given logger")
	}
	l.Error("discarded", "k", "v")
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("dev", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
