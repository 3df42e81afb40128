package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestConvertExport(t *testing.T) {
	store := newTestHistory(t)

	export := ChatExport{
		Name: "Trip Planning",
		Type: "private_supergroup",
		ID:   42,
		Messages: []ChatExportMessage{
			{ID: 1, Type: "service", Date: "2024-03-01T09:00:00", From: "Alice", FromID: "user111"},
			{ID: 2, Type: "message", Date: "2024-03-01T09:05:00", From: "Alice", FromID: "user111", Text: "hi all"},
			{ID: 3, Type: "message", Date: "2024-03-02T10:00:00", From: "AnalystBot", FromID: "user999", Text: "I am a bot"},
			{ID: 4, Type: "message", Date: "2024-03-02T11:00:00", From: "Bob", FromID: "user222", Text: ""},
			{ID: 5, Type: "message", Date: "2024-03-03T12:00:00", From: "Carol", FromID: "user333",
				Text: []any{"see ", map[string]any{"type": "link", "text": "this"}, " please"}},
			{ID: 6, Type: "message", Date: "2024-03-04T13:00:00", FromID: "user444", Text: "line one\nline two"},
		},
	}

	count, err := ConvertExport(export, store, "999")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected 3 converted messages, got %d", count)
	}

	data, err := store.Read(42)
	if err != nil {
		t.Fatal(err)
	}
	want := "2024-03-01 Alice: hi all\n" +
		"2024-03-03 Carol: see this please\n" +
		"2024-03-04 Unknown: line one. line two\n"
	if string(data) != want {
		t.Fatalf("converted history mismatch:\n%q\nwant:\n%q", data, want)
	}
}

func TestConvertExport_ReplacesExistingHistory(t *testing.T) {
	store := newTestHistory(t)

	if err := os.WriteFile(store.Path(42), []byte("old content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	export := ChatExport{
		ID: 42,
		Messages: []ChatExportMessage{
			{ID: 1, Type: "message", Date: "2024-03-01T09:00:00", From: "Alice", FromID: "user111", Text: "fresh"},
		},
	}
	if _, err := ConvertExport(export, store, ""); err != nil {
		t.Fatal(err)
	}

	data, err := store.Read(42)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2024-03-01 Alice: fresh\n" {
		t.Fatalf("expected the export to replace the history, got %q", data)
	}
}

func TestConvertAllRawChats(t *testing.T) {
	store := newTestHistory(t)
	rawDir := t.TempDir()

	raw := `{"name":"Trip","type":"private_supergroup","id":42,"messages":[
		{"id":1,"type":"message","date":"2024-03-01T09:00:00","date_unixtime":"1709283600","from":"Alice","from_id":"user111","text":"hi all","text_entities":[]}
	]}`
	path := filepath.Join(rawDir, "result.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	converted, err := ConvertAllRawChats(rawDir, store, "999", logger)
	if err != nil {
		t.Fatal(err)
	}
	if converted != 1 {
		t.Fatalf("expected 1 converted export, got %d", converted)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected the raw export to be deleted after conversion")
	}
	if !store.Exists(42) {
		t.Fatal("expected a history file for the exported chat")
	}
}

func TestConvertAllRawChats_EmptyDir(t *testing.T) {
	store := newTestHistory(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	converted, err := ConvertAllRawChats(t.TempDir(), store, "", logger)
	if err != nil {
		t.Fatal(err)
	}
	if converted != 0 {
		t.Fatalf("expected 0 conversions, got %d", converted)
	}
}

func TestExportText(t *testing.T) {
	if got := exportText("plain"); got != "plain" {
		t.Fatalf("expected plain, got %q", got)
	}
	mixed := []any{"a ", map[string]any{"type": "bold", "text": "b"}, " c"}
	if got := exportText(mixed); got != "a b c" {
		t.Fatalf("expected joined text, got %q", got)
	}
	if got := exportText(nil); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
