package learnpath

import (
	"context"
	"fmt"
	"strings"
)

// GenerationConfig holds the sampling parameters sent with a prompt
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int32
}

var (
	// ProseConfig is used for prose, bullet list and JSON generation
	ProseConfig = GenerationConfig{Temperature: 0.1, MaxOutputTokens: 5000}
	// RecommendationConfig is used for single line recommendations
	RecommendationConfig = GenerationConfig{Temperature: 0.1, MaxOutputTokens: 70}
)

// Completer sends one prompt to a text generation model and returns its completion.
// An empty completion is not an error.
type Completer interface {
	Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewCompleter builds the completer selected by cfg.Provider
func NewCompleter(ctx context.Context, cfg *Config) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.GoogleAPIKey, cfg.GeminiBaseURL, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
