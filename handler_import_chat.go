package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handlerImportChat processes an uploaded Telegram chat export (result.json)
// and converts it into a history file for the exported chat.
func (a *app) handlerImportChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	// Only process files in private chats
	if update.Message.Chat.Type != "private" {
		return
	}

	userID := update.Message.From.ID
	document := update.Message.Document
	if document == nil {
		a.logger.Warn("no document in message", "message_id", update.Message.ID, "from", userID)
		return
	}

	a.logger.Info("received file",
		"name", document.FileName, "file_id", document.FileID,
		"mime", document.MimeType, "size", document.FileSize, "from", userID)

	// Create a unique filename with the sender ID and a timestamp
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	safeFilename := filepath.Clean(document.FileName)
	filePath := filepath.Join(os.TempDir(), strconv.FormatInt(userID, 10)+"_"+timestamp+"_"+safeFilename)

	// Get file information to download it
	fileInfo, err := b.GetFile(ctx, &bot.GetFileParams{
		FileID: document.FileID,
	})
	if err != nil {
		a.logger.Error("error getting file info", "error", err)
		return
	}

	downloadURL := b.FileDownloadLink(fileInfo)

	resp, err := http.Get(downloadURL)
	if err != nil {
		a.logger.Error("error downloading file", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("error downloading file", "status", resp.StatusCode)
		return
	}

	fileData, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logger.Error("error reading file data", "error", err)
		return
	}

	if err := os.WriteFile(filePath, fileData, 0o644); err != nil {
		a.logger.Error("error saving file", "error", err)
		return
	}
	defer os.Remove(filePath)

	chatExport, err := NewChatExport(filePath)
	if err != nil {
		a.logger.Error("error reading chat export", "path", filePath, "error", err)
		return
	}

	count, err := ConvertExport(chatExport, a.history, strconv.FormatInt(a.botUser.ID, 10))
	if err != nil {
		a.logger.Error("error converting chat export", "chat_id", chatExport.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "Failed to import the chat export: " + err.Error(),
		})
		return
	}

	// The converted file replaces the old history, so a cached upload of
	// the previous content must not be reused.
	chatID := normalizeChatID(chatExport.ID)
	if err := a.cache.Evict(chatID); err != nil {
		a.logger.Error("error evicting cached file ID", "chat_id", chatID, "error", err)
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text: "Successfully imported chat export with " + strconv.Itoa(count) +
			" messages from chat " + chatExport.Name,
	})
}

func matchJsonFiles(update *models.Update) bool {
	if update == nil || update.Message == nil {
		return false
	}
	if update.Message.Document == nil {
		return false
	}

	return filepath.Ext(update.Message.Document.FileName) == ".json"
}
