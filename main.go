package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// app carries the collaborators the handlers need. It is constructed once
// in main and injected through method values; there is no package-level
// mutable state.
type app struct {
	cfg     Config
	history *HistoryStore
	cache   FileIDCache
	analyst *Analyst
	logger  *slog.Logger
	botUser *models.User
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("error configuring logging: %v", err)
	}
	slog.SetDefault(logger)

	history, err := NewHistoryStore(cfg.ChatDir)
	if err != nil {
		log.Fatalf("error initializing history store: %v", err)
	}

	// File-ID cache: file-per-chat by default, Redis when configured.
	var cache FileIDCache
	if cfg.RedisAddr != "" {
		redisCache := NewRedisFileIDCache(cfg)
		if err := redisCache.Ping(); err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				logger.Error("error closing Redis connection", "error", err)
			}
		}()
		cache = redisCache
	} else {
		diskCache, err := NewDiskFileIDCache(cfg.FileCacheDir)
		if err != nil {
			log.Fatalf("error initializing file cache: %v", err)
		}
		cache = diskCache
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	analyst, err := NewAnalyst(ctx, newOpenAIAssistantAPI(cfg.OpenAIAPIKey), cache, history, cfg, logger)
	if err != nil {
		log.Fatalf("assistant bootstrap failed: %v", err)
	}

	application := &app{
		cfg:     cfg,
		history: history,
		cache:   cache,
		analyst: analyst,
		logger:  logger,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(application.allowListMiddleware, application.storeMessageMiddleware),
		bot.WithDefaultHandler(application.handlerMention),
	}

	b, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		log.Fatalf("failed to create bot instance: %v", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		log.Fatalf("failed to get bot identity: %v", err)
	}
	application.botUser = me

	// One-time conversion of pending raw exports into history files.
	converted, err := ConvertAllRawChats(cfg.RawChatDir, history, strconv.FormatInt(me.ID, 10), logger)
	if err != nil {
		logger.Error("raw chat conversion failed", "error", err)
	} else if converted > 0 {
		logger.Info("raw chats converted", "count", converted)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "start", bot.MatchTypeCommand, application.handlerStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "refresh", bot.MatchTypeCommand, application.handlerRefresh)
	b.RegisterHandler(bot.HandlerTypeMessageText, "ask", bot.MatchTypeCommand, application.handlerAsk)

	b.RegisterHandlerMatchFunc(matchJsonFiles, application.handlerImportChat)

	// health check server for Fly.io
	go startHealthCheckServer(&cfg, logger)

	logger.Info("bot started", "bot_id", me.ID, "username", me.Username)
	b.Start(ctx)
}

func startHealthCheckServer(config *Config, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	serverAddr := "0.0.0.0:" + config.HttpServerPort
	if err := http.ListenAndServe(serverAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("health check server error", "error", err)
	}
}
