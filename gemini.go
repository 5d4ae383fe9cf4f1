package learnpath

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiCompleter generates completions with the Gemini API
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini client. An empty apiKey falls back to
// the GOOGLE_API_KEY / GEMINI_API_KEY environment variables; baseURL is optional.
func NewGeminiCompleter(ctx context.Context, apiKey, baseURL, model string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete sends the prompt as a single user turn
func (gc *GeminiCompleter) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	VerboseLog("Sending %d character prompt to %s", len(prompt), gc.model)

	result, err := gc.client.Models.GenerateContent(
		ctx,
		gc.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(cfg.Temperature),
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrUpstream, err)
	}

	return result.Text(), nil
}
