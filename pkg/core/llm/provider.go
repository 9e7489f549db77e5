package llm

import (
	"context"
	"fmt"
)

// Provider is the interface every model backend implements. Options
// carry backend-specific overrides ("model", "api_key",
// "response_format").
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// FromName builds a provider from a configuration string.
func FromName(name string) (Provider, error) {
	switch name {
	case "", "gemini":
		return &GeminiProvider{}, nil
	case "gemini-flash":
		return &GeminiProvider{Model: "gemini-1.5-flash"}, nil
	case "deepseek":
		return &DeepSeekProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
