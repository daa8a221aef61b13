package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Client is a single-turn text completion provider.
type Client interface {
	// Complete sends one system + user prompt pair and returns the raw text reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config selects and tunes a provider.
type Config struct {
	Provider    string // openai, ollama or gemini
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// New builds the client for cfg.Provider.
func New(ctx context.Context, cfg Config, logger *logrus.Entry) (Client, error) {
	if logger == nil {
		logger = logrus.WithField("component", "llm")
	}

	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg, logger), nil
	case "ollama":
		return NewOllamaClient(cfg, logger), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
}
