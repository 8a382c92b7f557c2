package main

import "testing"

func TestParseFlagsDefaults(t *testing.T) {
	cfg, exit, code := parseFlags(nil)
	if exit {
		t.Fatalf("expected no exit for default flags, got code %d", code)
	}
	if cfg.ThreadCount == 0 {
		t.Fatal("expected a non-zero default thread count")
	}
}

func TestParseFlagsOverridesThreadsAndT0(t *testing.T) {
	cfg, exit, _ := parseFlags([]string{"--threads", "8", "--t0", "4s"})
	if exit {
		t.Fatal("expected no exit")
	}
	if cfg.ThreadCount != 8 {
		t.Fatalf("expected thread count 8, got %d", cfg.ThreadCount)
	}
	if cfg.T0.Seconds() != 4 {
		t.Fatalf("expected t0 4s, got %s", cfg.T0)
	}
}

func TestParseFlagsVersionExits(t *testing.T) {
	_, exit, code := parseFlags([]string{"--version"})
	if !exit || code != 0 {
		t.Fatalf("expected exit=true code=0 for --version, got exit=%v code=%d", exit, code)
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	_, exit, code := parseFlags([]string{"--bogus"})
	if !exit || code != 2 {
		t.Fatalf("expected exit=true code=2 for an unknown flag, got exit=%v code=%d", exit, code)
	}
}
