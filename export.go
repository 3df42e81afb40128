package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ChatExport define the chat history structure of the json-format file from a telegram client.
type ChatExport struct {
	Name     string              `json:"name"`
	Type     string              `json:"type"`
	ID       int64               `json:"id"` // Using int64 for potentially large IDs
	Messages []ChatExportMessage `json:"messages"`
}

// ChatExportMessage represents a single message object within the chat export.
type ChatExportMessage struct {
	ID           int          `json:"id"`
	Type         string       `json:"type"`
	Date         string       `json:"date"`
	DateUnixtime int64        `json:"date_unixtime,string"` // JSON value is string, parse as number
	From         string       `json:"from,omitempty"`       // Missing in some system messages
	FromID       string       `json:"from_id,omitempty"`
	Text         any          `json:"text"` // Can be string or []TextEntity, use any for flexibility
	TextEntities []TextEntity `json:"text_entities"`
	MediaType    string       `json:"media_type,omitempty"`
	MimeType     string       `json:"mime_type,omitempty"`
	FileName     string       `json:"file_name,omitempty"`
}

// TextEntity represents formatting or special entities within the message text.
type TextEntity struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Href string `json:"href,omitempty"` // For text_link type
}

func NewChatExport(filePath string) (ChatExport, error) {
	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return ChatExport{}, fmt.Errorf("read export file: %w", err)
	}

	var chatData ChatExport
	if err := json.Unmarshal(jsonData, &chatData); err != nil {
		return ChatExport{}, fmt.Errorf("unmarshal export file: %w", err)
	}

	return chatData, nil
}

// ConvertExport writes the plain-text history for a Telegram chat export,
// replacing any existing history file for that chat. Messages authored by
// the bot itself, service messages and messages without text are skipped.
// Returns the number of converted messages.
func ConvertExport(export ChatExport, store *HistoryStore, botID string) (int, error) {
	var b strings.Builder
	count := 0

	for _, msg := range export.Messages {
		if msg.Type != "message" {
			continue
		}
		if botID != "" && strings.Contains(msg.FromID, botID) {
			continue
		}

		text := exportText(msg.Text)
		if text == "" {
			continue
		}

		sender := msg.From
		if sender == "" {
			sender = "Unknown"
		}

		date, _, _ := strings.Cut(msg.Date, "T")
		fmt.Fprintf(&b, "%s %s: %s\n", date, sender, normalizeText(text))
		count++
	}

	chatID := normalizeChatID(export.ID)
	if err := os.WriteFile(store.Path(chatID), []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write history file: %w", err)
	}
	return count, nil
}

// ConvertAllRawChats converts every export JSON found in rawDir into a
// history file and deletes the source afterwards. Meant to run once at
// startup; returns the number of converted exports.
func ConvertAllRawChats(rawDir string, store *HistoryStore, botID string, logger *slog.Logger) (int, error) {
	paths, err := filepath.Glob(filepath.Join(rawDir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("scan raw chat directory: %w", err)
	}

	converted := 0
	for _, path := range paths {
		export, err := NewChatExport(path)
		if err != nil {
			logger.Error("failed to convert raw chat", "path", path, "error", err)
			continue
		}

		count, err := ConvertExport(export, store, botID)
		if err != nil {
			logger.Error("failed to convert raw chat", "path", path, "error", err)
			continue
		}

		if err := os.Remove(path); err != nil {
			logger.Warn("failed to delete raw chat file", "path", path, "error", err)
		}

		logger.Info("converted raw chat", "path", path, "chat_id", normalizeChatID(export.ID), "messages", count)
		converted++
	}
	return converted, nil
}

// exportText extracts the message text from the export's flexible text
// field, which is either a plain string or a list of strings and entity
// objects.
func exportText(text any) string {
	switch v := text.(type) {
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, entity := range v {
			switch e := entity.(type) {
			case string:
				b.WriteString(e)
			case map[string]any:
				if s, ok := e["text"].(string); ok {
					b.WriteString(s)
				}
			}
		}
		return b.String()
	}
	return ""
}
