package aiclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient adapts an OpenAI-compatible chat completion endpoint (local
// model server included — most small-model backends expose this API) to the
// Client contract, over the go-openai SDK rather than a hand-rolled
// net/http client.
type OpenAIClient struct {
	api          *openai.Client
	defaultModel string
}

// NewOpenAIClient builds a client against baseURL (a local inference server
// or the hosted OpenAI API) using apiKey for auth.
func NewOpenAIClient(baseURL, apiKey, defaultModel string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		api:          openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}
}

// Reset is a no-op for a stateless HTTP chat endpoint: there is no
// server-side session to clear. Backends that DO carry KV-cache state
// (embedded small-model runtimes) implement their own Client with a real
// reset call; this implementation exists to satisfy hosted/remote backends
// where the hygiene invariant is the server's responsibility.
func (c *OpenAIClient) Reset(ctx context.Context) error {
	return nil
}

// Complete issues one chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts Options) (*Response, error) {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion returned no choices")
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}
