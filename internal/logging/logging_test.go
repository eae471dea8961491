package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Errorf("parseLevel(%q): got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDefaultLoggerUsable(t *testing.T) {
	log := Default()
	if log == nil || log.Logger == nil {
		t.Fatal("Default returned unusable logger")
	}
	// Must not panic.
	log.Info("test message", "key", "value")
	log.With("component", "test").Debug("sub-logger message")
}
