package providers

import (
	"fmt"
	"time"
)

// ClientConfig mirrors the llm section of the config file with the API key
// already resolved.
type ClientConfig struct {
	Type       string // "openai" or "mock"
	Model      string
	APIKey     string // Resolved API key
	RateLimit  int    // Requests per minute
	MaxRetries int
	Timeout    time.Duration
}

// NewClientFromConfig creates the configured LLM client.
func NewClientFromConfig(cfg ClientConfig) (LLMClient, error) {
	switch cfg.Type {
	case OpenAIClientName, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm.api_key is required for the openai client")
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.Timeout,
			RateLimit:  cfg.RateLimit,
		}), nil
	case MockClientName:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm client type: %q", cfg.Type)
	}
}
