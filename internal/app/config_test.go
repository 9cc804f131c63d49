package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Seed == 0 {
		t.Fatal("expected a default seed")
	}
	start, end, asOf, err := cfg.Window()
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !end.After(start) {
		t.Fatalf("end %v not after start %v", end, start)
	}
	if asOf.Before(start) {
		t.Fatalf("as-of %v before start %v", asOf, start)
	}
}

func TestLoadConfigWindowOverride(t *testing.T) {
	t.Setenv("MISA_START", "2024-03-01")
	t.Setenv("MISA_END", "2024-06-30")
	t.Setenv("MISA_AS_OF", "2024-06-30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	start, end, _, err := cfg.Window()
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if start != time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start %v", start)
	}
	if end.Month() != time.June {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestLoadConfigRejectsInvertedWindow(t *testing.T) {
	t.Setenv("MISA_START", "2024-06-30")
	t.Setenv("MISA_END", "2024-03-01")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for inverted window")
	}
}

func TestLoadConfigRejectsBadDate(t *testing.T) {
	t.Setenv("MISA_START", "01/03/2024")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
