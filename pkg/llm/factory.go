package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/config"
)

// NewFromConfig creates the completion client selected by configuration.
func NewFromConfig(cfg *config.AIConfig, logger *zap.Logger) (CompletionClient, error) {
	clientCfg := &Config{
		Endpoint:  cfg.Endpoint,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout(),
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(clientCfg, logger)
	case "anthropic":
		return NewAnthropicClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
