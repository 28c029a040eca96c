// Package llm provides the chat-completion client and the extraction agents
// built on it.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client produces completions for agent prompts.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type openAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a chat client against an OpenAI-compatible endpoint.
// endpoint may be empty for the default API host.
func NewClient(endpoint, apiKey, model string, logger *zap.Logger) Client {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return &openAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.Named("llm"),
	}
}

var _ Client = (*openAIClient)(nil)

func (c *openAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
