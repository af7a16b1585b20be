package llm

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

var nameInvalidChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds LLM client configuration.
type Config struct {
	Provider   string        // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	APIKey     string        // Required: API key for the provider
	BaseURL    string        // Optional: custom API endpoint
	Model      string        // Model name (e.g., "gemini-3-flash-preview:cloud")
	Timeout    time.Duration // Optional: per-request timeout
	MaxRetries int           // SDK-level retries; 0 surfaces the first failure
}

// Client turns one system + user prompt pair into a single text reply.
// Errors are always *GatewayError.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	UserName     string // Optional: author of the user prompt, sent as the participant name when supported
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

// New creates a Client for cfg.Provider. Defaults to the OpenAI-compatible provider.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch cfg.Provider {
	case "", ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func Temp(t float64) *float64 {
	return &t
}

// SanitizeName converts a username to a valid OpenAI name parameter.
// The name must match ^[a-zA-Z0-9_-]{1,64}$.
// Invalid characters are replaced with underscores, and the result is truncated to 64 characters.
func SanitizeName(username string) string {
	sanitized := nameInvalidChars.ReplaceAllString(username, "_")
	if len(sanitized) > 64 {
		sanitized = sanitized[:64]
	}
	return sanitized
}
