package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient talks to the Anthropic Messages API. Decoding is pinned
// the same way as the OpenAI client: temperature 0 and a fixed token budget.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAnthropicClient creates a new Anthropic completion client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger.Named("llm"),
	}, nil
}

// Complete implements CompletionClient.
func (c *AnthropicClient) Complete(ctx context.Context, systemMessage, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := float32(0)
	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    systemMessage,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(userMessage),
		},
		Temperature: &temperature,
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	text := firstTextBlock(resp)
	if strings.TrimSpace(text) == "" {
		return "", NewError(ErrorTypeEmpty, "no text content in response", nil)
	}

	c.logger.Info("completion request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// GetModel implements CompletionClient.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

func firstTextBlock(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
