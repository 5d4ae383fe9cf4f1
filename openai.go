package learnpath

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompleter generates completions with an OpenAI compatible chat API
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a new completer with OpenAI client.
// baseURL is optional and points the client at a compatible endpoint.
func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the prompt as a single user message
func (oc *OpenAICompleter) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	VerboseLog("Sending %d character prompt to %s", len(prompt), oc.model)

	resp, err := oc.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: oc.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert teacher who writes clear, well structured learning material.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: cfg.Temperature,
			MaxTokens:   int(cfg.MaxOutputTokens),
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUpstream)
	}

	return resp.Choices[0].Message.Content, nil
}
