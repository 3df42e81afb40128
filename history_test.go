package main

import (
	"strings"
	"testing"
	"time"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestHistoryStore_AppendFormatsLine(t *testing.T) {
	store := newTestHistory(t)

	date := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	if err := store.Append(42, "Alice Smith", "hello there", date); err != nil {
		t.Fatal(err)
	}

	data, err := store.Read(42)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2024-05-01 Alice Smith: hello there\n" {
		t.Fatalf("unexpected line %q", data)
	}
}

func TestHistoryStore_AppendIsMonotonic(t *testing.T) {
	store := newTestHistory(t)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var previous string
	for i, text := range []string{"one", "two", "three"} {
		if err := store.Append(42, "Alice", text, date.AddDate(0, 0, i)); err != nil {
			t.Fatal(err)
		}

		data, err := store.Read(42)
		if err != nil {
			t.Fatal(err)
		}
		content := string(data)

		if !strings.HasPrefix(content, previous) {
			t.Fatalf("existing lines were altered:\n%q\nno longer starts with\n%q", content, previous)
		}
		if got := strings.Count(content, "\n"); got != i+1 {
			t.Fatalf("expected %d lines after %d appends, got %d", i+1, i+1, got)
		}
		previous = content
	}
}

func TestHistoryStore_AppendNormalizesLineBreaks(t *testing.T) {
	store := newTestHistory(t)

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Append(42, "Bob", "first\nsecond\r\nthird", date); err != nil {
		t.Fatal(err)
	}

	data, err := store.Read(42)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2024-05-01 Bob: first. second. third\n" {
		t.Fatalf("unexpected line %q", data)
	}
}

func TestHistoryStore_Exists(t *testing.T) {
	store := newTestHistory(t)

	if store.Exists(42) {
		t.Fatal("expected no history before the first append")
	}
	if err := store.Append(42, "Alice", "hi", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(42) {
		t.Fatal("expected history after the first append")
	}
}
