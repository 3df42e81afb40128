package main

import "testing"

func TestParseChatIDs(t *testing.T) {
	ids, err := parseChatIDs("-1001234, 42,99")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	want := []int64{-1001234, 42, 99}
	if len(ids) != len(want) {
		t.Fatalf("expected %d IDs, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %d at %d, got %d", want[i], i, ids[i])
		}
	}
}

func TestParseChatIDs_Empty(t *testing.T) {
	ids, err := parseChatIDs("  ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ids != nil {
		t.Fatalf("expected nil list, got %v", ids)
	}
}

func TestParseChatIDs_Invalid(t *testing.T) {
	if _, err := parseChatIDs("42,abc"); err == nil {
		t.Fatal("expected an error for a non-numeric entry")
	}
}
