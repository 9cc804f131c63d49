package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerHonorsLevel(t *testing.T) {
	cases := []struct {
		level      string
		debugKept  bool
		errorsKept bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, true},
		{"bogus", false, true},
	}
	for _, tc := range cases {
		logger := NewLogger(&Config{LogFormat: "json", LogLevel: tc.level})
		ctx := context.Background()
		if got := logger.Enabled(ctx, slog.LevelDebug); got != tc.debugKept {
			t.Fatalf("level %q: debug enabled = %v, want %v", tc.level, got, tc.debugKept)
		}
		if got := logger.Enabled(ctx, slog.LevelError); got != tc.errorsKept {
			t.Fatalf("level %q: error enabled = %v, want %v", tc.level, got, tc.errorsKept)
		}
	}
}

func TestNewLoggerNilConfigDefaultsToInfo(t *testing.T) {
	logger := NewLogger(nil)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled by default")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be enabled by default")
	}
}
