package main

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handlerRefresh force-uploads the chat's history file and replies with
// the outcome of the upload.
func (a *app) handlerRefresh(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	result := a.analyst.Refresh(ctx, normalizeChatID(msg.Chat.ID))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   result,
	})
}
