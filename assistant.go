package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const assistantName = "Telegram Chat Analyst"

const assistantInstructions = "You are an assistant that analyzes a Telegram group chat conversation provided as a plain text file. " +
	"You must answer questions based only on the contents of that file. " +
	"The chat log is formatted as one message per line, in the following structure: " +
	"YYYY-MM-DD Username: Message text " +
	"Each line contains the date, the full name of the message sender, and the message itself. " +
	"There is no additional metadata. " +
	"Be concise and factual. If possible, refer to relevant message dates when giving answers. " +
	"If the information is not found in the log, say that directly. " +
	"Do not guess or assume anything outside of the provided text file."

// Run statuses reported by the assistant platform.
const (
	runStatusCompleted = "completed"
	runStatusFailed    = "failed"
	runStatusCancelled = "cancelled"
)

// User-facing outcome messages. Analyze and Refresh return these instead
// of errors; the transport sends them to the chat verbatim.
const (
	msgNoHistory        = "⚠️ No chat history found. Use /refresh to upload it."
	msgNoHistoryFile    = "❌ No chat history file found."
	msgNoAssistantReply = "⚠️ Assistant did not return a response."
	msgRunTimedOut      = "❌ Run timed out before completing."
)

// Inline citation markers the assistant platform injects into answers,
// e.g. 【4:0†chat_42.txt】.
var citationPattern = regexp.MustCompile(`【[^】]*】`)

// RunStatus is one observation of a remote processing run.
type RunStatus struct {
	State  string
	Detail string
}

// assistantAPI is the slice of the remote assistant platform the Analyst
// depends on. The production implementation lives in openai_api.go.
type assistantAPI interface {
	CreateAssistant(ctx context.Context, name, instructions, model string) (string, error)
	UploadFile(ctx context.Context, name string, content io.Reader) (string, error)
	CreateThread(ctx context.Context) (string, error)
	AddUserMessage(ctx context.Context, threadID, text, fileID string) error
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	RunStatus(ctx context.Context, threadID, runID string) (RunStatus, error)
	LatestAssistantReply(ctx context.Context, threadID string) (string, bool, error)
}

// userError is a failure whose text is reported to the chat verbatim.
type userError string

func (e userError) Error() string { return string(e) }

// Analyst drives the ask-a-question workflow against the remote assistant:
// ensure an uploaded history file exists, open a thread, submit the
// question, poll the run to a terminal state and extract the answer.
type Analyst struct {
	api          assistantAPI
	cache        FileIDCache
	history      *HistoryStore
	assistantID  string
	pollInterval time.Duration
	runTimeout   time.Duration
	logger       *slog.Logger
}

// NewAnalyst reuses a previously persisted assistant ID or creates the
// assistant remotely and persists the new ID. Creation failure is fatal to
// startup; without the assistant no chat can be served.
func NewAnalyst(ctx context.Context, api assistantAPI, cache FileIDCache, history *HistoryStore, config Config, logger *slog.Logger) (*Analyst, error) {
	assistantID, err := loadOrCreateAssistant(ctx, api, config.AssistantIDFile, config.AssistantModel, logger)
	if err != nil {
		return nil, err
	}

	return &Analyst{
		api:          api,
		cache:        cache,
		history:      history,
		assistantID:  assistantID,
		pollInterval: time.Second,
		runTimeout:   config.RunTimeout,
		logger:       logger,
	}, nil
}

func loadOrCreateAssistant(ctx context.Context, api assistantAPI, idFile, model string, logger *slog.Logger) (string, error) {
	data, err := os.ReadFile(idFile)
	if err == nil {
		assistantID := strings.TrimSpace(string(data))
		logger.Info("using cached assistant ID", "assistant_id", assistantID)
		return assistantID, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read assistant ID file: %w", err)
	}

	logger.Info("creating new assistant", "model", model)
	assistantID, err := api.CreateAssistant(ctx, assistantName, assistantInstructions, model)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}

	if err := os.WriteFile(idFile, []byte(assistantID), 0o644); err != nil {
		return "", fmt.Errorf("persist assistant ID: %w", err)
	}

	logger.Info("new assistant created and cached", "assistant_id", assistantID)
	return assistantID, nil
}

// Analyze answers a question about the chat's history. It always returns a
// human-readable string: the sanitized answer, or a failure message.
func (a *Analyst) Analyze(ctx context.Context, chatID int64, question string) string {
	answer, err := a.analyze(ctx, chatID, question)
	if err == nil {
		return answer
	}

	var ue userError
	if errors.As(err, &ue) {
		return string(ue)
	}

	a.logger.Error("error during history analysis", "chat_id", chatID, "error", err)
	return "❌ Processing error: " + err.Error()
}

func (a *Analyst) analyze(ctx context.Context, chatID int64, question string) (string, error) {
	fileID, err := a.ensureChatFile(ctx, chatID)
	if err != nil {
		return "", err
	}

	threadID, err := a.api.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}

	if err := a.api.AddUserMessage(ctx, threadID, question, fileID); err != nil {
		return "", fmt.Errorf("post question: %w", err)
	}

	runID, err := a.api.StartRun(ctx, threadID, a.assistantID)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}

	if err := a.waitForRun(ctx, chatID, threadID, runID); err != nil {
		return "", err
	}

	reply, found, err := a.api.LatestAssistantReply(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("list thread messages: %w", err)
	}
	if !found {
		return msgNoAssistantReply, nil
	}

	a.logger.Info("response successfully generated", "chat_id", chatID, "run_id", runID)
	return cleanResponse(reply), nil
}

// ensureChatFile returns the remote file ID to attach to the question. A
// cached ID is used as-is even if the history has grown since the upload;
// only /refresh replaces it. On a cache miss the current history file is
// uploaded and the new ID cached.
func (a *Analyst) ensureChatFile(ctx context.Context, chatID int64) (string, error) {
	fileID, ok, err := a.cache.Lookup(chatID)
	if err != nil {
		return "", fmt.Errorf("cache lookup: %w", err)
	}
	if ok {
		a.logger.Info("using previously cached file", "chat_id", chatID, "file_id", fileID)
		return fileID, nil
	}

	if !a.history.Exists(chatID) {
		return "", userError(msgNoHistory)
	}

	fileID, err = a.uploadHistory(ctx, chatID)
	if err != nil {
		return "", err
	}

	a.logger.Info("chat file uploaded and cached", "chat_id", chatID, "file_id", fileID)
	return fileID, nil
}

// Refresh force-uploads the chat's history file and overwrites the cached
// file ID. The cache is left untouched when the history file is missing or
// the upload fails.
func (a *Analyst) Refresh(ctx context.Context, chatID int64) string {
	if !a.history.Exists(chatID) {
		return msgNoHistoryFile
	}

	fileID, err := a.uploadHistory(ctx, chatID)
	if err != nil {
		a.logger.Error("failed to refresh chat file", "chat_id", chatID, "error", err)
		return "❌ Upload failed: " + err.Error()
	}

	return "✅ New file uploaded. ID: " + fileID
}

func (a *Analyst) uploadHistory(ctx context.Context, chatID int64) (string, error) {
	path := a.history.Path(chatID)
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	fileID, err := a.api.UploadFile(ctx, filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("upload history file: %w", err)
	}

	if err := a.cache.Store(chatID, fileID); err != nil {
		return "", fmt.Errorf("cache uploaded file ID: %w", err)
	}
	return fileID, nil
}

// waitForRun polls the run at a fixed interval until it reaches a terminal
// state or the configured timeout expires.
func (a *Analyst) waitForRun(ctx context.Context, chatID int64, threadID, runID string) error {
	deadline := time.NewTimer(a.runTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		status, err := a.api.RunStatus(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("retrieve run: %w", err)
		}

		switch status.State {
		case runStatusCompleted:
			return nil
		case runStatusFailed, runStatusCancelled:
			detail := status.Detail
			if detail == "" {
				detail = "no details"
			}
			a.logger.Error("run reached terminal failure",
				"chat_id", chatID, "run_id", runID, "status", status.State, "reason", detail)
			if status.State == runStatusCancelled {
				return userError("Run cancelled: " + detail)
			}
			return userError("Run failed: " + detail)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			a.logger.Error("run timed out", "chat_id", chatID, "run_id", runID, "timeout", a.runTimeout)
			return userError(msgRunTimedOut)
		case <-ticker.C:
		}
	}
}

// cleanResponse strips the citation markers the assistant platform injects
// to point at source passages.
func cleanResponse(content string) string {
	return strings.TrimSpace(citationPattern.ReplaceAllString(content, ""))
}
