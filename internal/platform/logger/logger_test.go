package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	out := sanitizeKVs([]interface{}{"org_id", 7, "access_token", "abc", "Authorization", "Bearer x", "dangling"})
	want := []interface{}{"org_id", 7, "access_token", "[REDACTED]", "Authorization", "[REDACTED]", "dangling"}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "test").Info("command applied", "kind", "AddEventType", "token", "secret-value")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "test" || fields["kind"] != "AddEventType" {
		t.Errorf("fields = %v", fields)
	}
	if fields["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want redacted", fields["token"])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"", "development", "production"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Debug("ok")
	}
	Nop().Error("discarded")
}
