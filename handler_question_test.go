package main

import "testing"

func TestMentionQuestion(t *testing.T) {
	question, ok := mentionQuestion("@analyst_bot when did we plan the trip?", "analyst_bot")
	if !ok {
		t.Fatal("expected the mention to match")
	}
	if question != "when did we plan the trip?" {
		t.Fatalf("unexpected question %q", question)
	}
}

func TestMentionQuestion_MentionInsideText(t *testing.T) {
	question, ok := mentionQuestion("hey @analyst_bot what happened yesterday", "analyst_bot")
	if !ok {
		t.Fatal("expected the mention to match")
	}
	if question != "hey  what happened yesterday" {
		t.Fatalf("unexpected question %q", question)
	}
}

func TestMentionQuestion_NoMention(t *testing.T) {
	if _, ok := mentionQuestion("just chatting", "analyst_bot"); ok {
		t.Fatal("expected no match without a mention")
	}
}

func TestCommandArgs(t *testing.T) {
	if got := commandArgs("/ask who was online?"); got != "who was online?" {
		t.Fatalf("unexpected args %q", got)
	}
	if got := commandArgs("/ask"); got != "" {
		t.Fatalf("expected empty args, got %q", got)
	}
}
