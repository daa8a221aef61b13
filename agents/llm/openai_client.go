package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	defaultOpenAIModel = "gpt-4o"
	defaultOllamaModel = "llama3.1"
	defaultOllamaURL   = "http://localhost:11434/v1"
)

var ErrEmptyCompletion = errors.New("llm returned no choices")

// OpenAIClient talks to the OpenAI chat completions API or any compatible server.
type OpenAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float32
	maxTokens   int
	logger      *logrus.Entry
}

func NewOpenAIClient(cfg Config, logger *logrus.Entry) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return newOpenAICompatible(openai.NewClientWithConfig(clientCfg), "openai", cfg, logger)
}

// NewOllamaClient points the OpenAI-compatible client at a local Ollama server.
func NewOllamaClient(cfg Config, logger *logrus.Entry) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaURL
	}

	// Ollama ignores the key but the client requires one.
	clientCfg := openai.DefaultConfig("ollama")
	clientCfg.BaseURL = cfg.BaseURL

	return newOpenAICompatible(openai.NewClientWithConfig(clientCfg), "ollama", cfg, logger)
}

func newOpenAICompatible(client *openai.Client, provider string, cfg Config, logger *logrus.Entry) *OpenAIClient {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	return &OpenAIClient{
		client:      client,
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.WithField("provider", provider),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.WithError(err).WithField("duration", duration).Warn("chat completion failed")
		return "", fmt.Errorf("%s chat failed: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	c.logger.WithFields(logrus.Fields{
		"model":    c.model,
		"tokens":   resp.Usage.TotalTokens,
		"duration": duration,
	}).Debug("chat completion done")

	return resp.Choices[0].Message.Content, nil
}

var _ Client = (*OpenAIClient)(nil)
