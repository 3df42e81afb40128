package main

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// openAIAssistantAPI implements assistantAPI against the OpenAI Assistants
// beta endpoints.
type openAIAssistantAPI struct {
	client openai.Client
}

func newOpenAIAssistantAPI(apiKey string) *openAIAssistantAPI {
	return &openAIAssistantAPI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (o *openAIAssistantAPI) CreateAssistant(ctx context.Context, name, instructions, model string) (string, error) {
	assistant, err := o.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Name:         openai.String(name),
		Instructions: openai.String(instructions),
		Model:        shared.ChatModel(model),
		Tools: []openai.AssistantToolUnionParam{{
			OfFileSearch: &openai.FileSearchToolParam{},
		}},
	})
	if err != nil {
		return "", err
	}
	return assistant.ID, nil
}

func (o *openAIAssistantAPI) UploadFile(ctx context.Context, name string, content io.Reader) (string, error) {
	file, err := o.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(content, name, "text/plain"),
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", err
	}
	return file.ID, nil
}

func (o *openAIAssistantAPI) CreateThread(ctx context.Context) (string, error) {
	thread, err := o.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (o *openAIAssistantAPI) AddUserMessage(ctx context.Context, threadID, text, fileID string) error {
	_, err := o.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
		Attachments: []openai.BetaThreadMessageNewParamsAttachment{{
			FileID: openai.String(fileID),
			Tools: []openai.BetaThreadMessageNewParamsAttachmentToolUnion{{
				OfFileSearch: &openai.BetaThreadMessageNewParamsAttachmentToolFileSearch{},
			}},
		}},
	})
	return err
}

func (o *openAIAssistantAPI) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := o.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func (o *openAIAssistantAPI) RunStatus(ctx context.Context, threadID, runID string) (RunStatus, error) {
	run, err := o.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return RunStatus{}, err
	}

	status := RunStatus{State: string(run.Status)}
	if run.LastError.Message != "" {
		status.Detail = fmt.Sprintf("%s: %s", run.LastError.Code, run.LastError.Message)
	}
	return status, nil
}

func (o *openAIAssistantAPI) LatestAssistantReply(ctx context.Context, threadID string) (string, bool, error) {
	page, err := o.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return "", false, err
	}

	for _, message := range page.Data {
		if message.Role != "assistant" {
			continue
		}
		for _, block := range message.Content {
			if block.Type == "text" {
				return block.Text.Value, true, nil
			}
		}
	}
	return "", false, nil
}
