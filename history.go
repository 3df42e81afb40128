package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HistoryStore keeps one append-only plain-text log per chat. Each line is
// "YYYY-MM-DD DisplayName: message text"; the file is also the exact
// payload uploaded to the assistant, so nothing else may be written to it.
type HistoryStore struct {
	dir string
}

func NewHistoryStore(dir string) (*HistoryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &HistoryStore{dir: dir}, nil
}

// Path returns the location of the history file for a chat, whether or not
// it exists yet.
func (s *HistoryStore) Path(chatID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("chat_%d.txt", chatID))
}

func (s *HistoryStore) Exists(chatID int64) bool {
	_, err := os.Stat(s.Path(chatID))
	return err == nil
}

// Append writes one message line to the chat's history file, creating the
// file on first use. Calling twice appends twice; there is no deduplication.
func (s *HistoryStore) Append(chatID int64, sender, text string, date time.Time) error {
	f, err := os.OpenFile(s.Path(chatID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s: %s\n", date.Format("2006-01-02"), sender, normalizeText(text))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append history line: %w", err)
	}
	return nil
}

// Read returns the whole history file for a chat.
func (s *HistoryStore) Read(chatID int64) ([]byte, error) {
	return os.ReadFile(s.Path(chatID))
}

// normalizeText collapses a message onto a single line so embedded line
// breaks cannot corrupt the one-message-per-line format.
func normalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", ". ")
}
