package main

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const typingInterval = 4 * time.Second

// handlerMention is the default handler: in group chats, a message that
// mentions the bot is treated as a question about the chat history.
func (a *app) handlerMention(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || !isGroupChat(msg) {
		return
	}

	question, ok := mentionQuestion(msg.Text, a.botUser.Username)
	if !ok {
		return
	}

	a.answerQuestion(ctx, b, msg, question)
}

// handlerAsk answers a question passed as the /ask command argument.
func (a *app) handlerAsk(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	question := commandArgs(msg.Text)
	if question == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "Usage: /ask <question about the chat history>",
		})
		return
	}

	a.answerQuestion(ctx, b, msg, question)
}

// answerQuestion runs the analysis and replies to the asking message. A
// typing indicator is repeated while the analysis is in flight and stopped
// deterministically before the answer is sent, on every path.
func (a *app) answerQuestion(ctx context.Context, b *bot.Bot, msg *models.Message, question string) {
	chatID := normalizeChatID(msg.Chat.ID)
	a.logger.Info("question received", "chat_id", chatID, "question", question)

	typingCtx, stopTyping := context.WithCancel(ctx)
	typingDone := make(chan struct{})
	go a.typingLoop(typingCtx, b, msg.Chat.ID, typingDone)

	answer := a.analyst.Analyze(ctx, chatID, question)

	stopTyping()
	<-typingDone

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            answer,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		a.logger.Error("failed to send answer", "chat_id", chatID, "error", err)
	}
}

// typingLoop sends the typing chat action at a fixed cadence until the
// context is cancelled, then closes done.
func (a *app) typingLoop(ctx context.Context, b *bot.Bot, chatID int64, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	for {
		b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// mentionQuestion reports whether text mentions the bot and returns the
// text with the mention token stripped.
func mentionQuestion(text, username string) (string, bool) {
	mention := "@" + username
	if !strings.Contains(text, mention) {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(text, mention, "")), true
}

// commandArgs returns everything after the command token.
func commandArgs(text string) string {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(text[len(parts[0]):])
}
