package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramBotToken string
	OpenAIAPIKey     string

	ChatDir         string
	RawChatDir      string
	FileCacheDir    string
	AssistantIDFile string
	AssistantModel  string
	RunTimeout      time.Duration

	RedisAddr     string
	RedisPassword string

	HttpServerPort string
	AllowedChatIDs []int64

	LogLevel  string
	LogFormat string
}

func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("error loading .env file: %v", err)
	}

	var config Config
	config.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	config.ChatDir = getEnv("CHAT_DIR", "converted_chats")
	config.RawChatDir = getEnv("RAW_CHAT_DIR", "raw_chats")
	config.FileCacheDir = getEnv("FILE_CACHE_DIR", "file_cache")
	config.AssistantIDFile = getEnv("ASSISTANT_ID_FILE", "assistant_id.txt")
	config.AssistantModel = getEnv("ASSISTANT_MODEL", "o3-mini")
	config.RedisAddr = os.Getenv("REDIS_ADDR")
	config.RedisPassword = os.Getenv("REDIS_PASSWORD")
	config.HttpServerPort = getEnv("PORT", "8080")
	config.LogLevel = getEnv("LOG_LEVEL", "info")
	config.LogFormat = getEnv("LOG_FORMAT", "text")

	if config.TelegramBotToken == "" {
		return config, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if config.OpenAIAPIKey == "" {
		return config, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	timeout, err := time.ParseDuration(getEnv("RUN_TIMEOUT", "10m"))
	if err != nil {
		return config, fmt.Errorf("invalid RUN_TIMEOUT: %w", err)
	}
	config.RunTimeout = timeout

	config.AllowedChatIDs, err = parseChatIDs(os.Getenv("ALLOWED_CHAT_IDS"))
	if err != nil {
		return config, fmt.Errorf("invalid ALLOWED_CHAT_IDS: %w", err)
	}

	return config, nil
}

// parseChatIDs parses a comma-separated list of chat IDs. An empty list
// means every chat is allowed.
func parseChatIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, returns the fallback value.
func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
