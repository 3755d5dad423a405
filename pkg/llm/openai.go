package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds configuration for creating a completion client.
type Config struct {
	Endpoint  string        // Base URL, e.g. "https://api.openai.com/v1"
	Model     string        // Model name, e.g. "gpt-4o-mini"
	APIKey    string        // Optional for local endpoints
	MaxTokens int           // Completion token budget
	Timeout   time.Duration // Wall-clock bound per request
}

const defaultTimeout = 30 * time.Second

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
// Decoding is pinned for determinism: temperature 0 and a JSON-object
// response format.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible completion client.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
		logger:    logger.Named("llm"),
	}, nil
}

// Complete implements CompletionClient.
func (c *OpenAIClient) Complete(ctx context.Context, systemMessage, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("completion request",
		zap.String("model", c.model),
		zap.Int("system_len", len(systemMessage)),
		zap.Int("user_len", len(userMessage)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: 0,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewError(ErrorTypeEmpty, "no choices in response", nil)
	}

	c.logger.Info("completion request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// GetModel implements CompletionClient.
func (c *OpenAIClient) GetModel() string {
	return c.model
}
