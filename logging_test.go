package main

import (
	"log/slog"
	"testing"
)

func TestParseSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := parseSlogLevel(in)
		if err != nil {
			t.Fatalf("parseSlogLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("parseSlogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseSlogLevel("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := newLogger("info", "xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
