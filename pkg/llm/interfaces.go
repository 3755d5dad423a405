// Package llm provides completion client adapters for OpenAI-compatible
// and Anthropic endpoints.
package llm

import "context"

// CompletionClient is the interface the insight pipeline depends on.
// Implementations fix their decoding parameters (temperature 0, token
// budget, wall-clock timeout) at construction; callers only supply the
// messages. Use this interface for dependency injection to enable mocking
// in tests.
type CompletionClient interface {
	// Complete sends the system and user messages to the completion
	// endpoint and returns the first choice's raw text. It never retries;
	// retry policy is a caller concern.
	Complete(ctx context.Context, systemMessage, userMessage string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure both clients implement CompletionClient at compile time.
var (
	_ CompletionClient = (*OpenAIClient)(nil)
	_ CompletionClient = (*AnthropicClient)(nil)
)
