package main

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// storeMessageMiddleware appends every group text message to the chat's
// history file before the update reaches any handler. Commands are not
// part of the conversation and are skipped.
func (a *app) storeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if msg := update.Message; msg != nil && isGroupChat(msg) &&
			msg.Text != "" && !strings.HasPrefix(msg.Text, "/") {
			chatID := normalizeChatID(msg.Chat.ID)
			if err := a.history.Append(chatID, displayName(msg.From), msg.Text, time.Unix(int64(msg.Date), 0)); err != nil {
				a.logger.Error("failed to store message", "chat_id", chatID, "error", err)
			}
		}

		next(ctx, b, update)
	}
}

// allowListMiddleware is a middleware that ensures only allowed chats can use the bot
func (a *app) allowListMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		// Skip middleware checks for non-message updates
		if update.Message == nil {
			next(ctx, b, update)
			return
		}

		chatID := update.Message.Chat.ID

		// If no allow list is configured, allow all chats
		if len(a.cfg.AllowedChatIDs) == 0 {
			next(ctx, b, update)
			return
		}

		for _, id := range a.cfg.AllowedChatIDs {
			if id == chatID {
				next(ctx, b, update)
				return
			}
		}

		chatName := update.Message.Chat.Title
		if chatName == "" {
			chatName = strings.TrimSpace(update.Message.Chat.FirstName + " " + update.Message.Chat.LastName)
		}
		a.logger.Warn("rejecting message from unauthorized chat", "chat_id", chatID, "chat_name", chatName)

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Sorry, this bot is not available in this chat.",
		})
	}
}

func isGroupChat(msg *models.Message) bool {
	return msg.Chat.Type == "group" || msg.Chat.Type == "supergroup"
}

func displayName(user *models.User) string {
	if user == nil {
		return "Unknown"
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}
