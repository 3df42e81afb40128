package main

import (
	"strconv"
	"strings"
)

// normalizeChatID strips the sign marker and the supergroup "100" prefix
// from a Telegram chat ID so that history files and cache entries share a
// single key per chat, regardless of which form the transport reported.
func normalizeChatID(chatID int64) int64 {
	s := strconv.FormatInt(chatID, 10)
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "100")

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return chatID
	}
	return id
}
