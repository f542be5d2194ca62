package llm

import (
	"fmt"
	"os"
	"strings"
)

// NewProvider creates a structured-generation provider from configuration,
// throttled to the configured request rate
func NewProvider(config Config) (Provider, error) {
	p, err := newProvider(config)
	if err != nil {
		return nil, err
	}
	return Throttle(p, config.RequestsPerSecond), nil
}

func newProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(fillKeyFromEnv(config, "OPENAI_API_KEY"))

	case "anthropic", "claude":
		return NewAnthropicProvider(fillKeyFromEnv(config, "ANTHROPIC_API_KEY"))

	case "gemini", "google":
		return NewGeminiProvider(fillKeyFromEnv(config, "GEMINI_API_KEY"))

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}
}

// NewEmbedder creates an embedding provider from configuration.
// Anthropic has no embeddings API; callers pointing generation at Anthropic
// should configure a different embedding provider.
func NewEmbedder(config Config) (Embedder, error) {
	e, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	return ThrottleEmbedder(e, config.RequestsPerSecond), nil
}

func newEmbedder(config Config) (Embedder, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(fillKeyFromEnv(config, "OPENAI_API_KEY"))

	case "gemini", "google":
		return NewGeminiProvider(fillKeyFromEnv(config, "GEMINI_API_KEY"))

	case "ollama":
		return NewOllamaProvider(config)

	case "anthropic", "claude":
		return nil, fmt.Errorf("anthropic has no embeddings API; configure openai, gemini, or ollama for matching")

	case "":
		return nil, fmt.Errorf("no embedding provider configured")

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", config.Provider)
	}
}

// fillKeyFromEnv falls back to the conventional environment variable when
// no API key was configured explicitly
func fillKeyFromEnv(config Config, envVar string) Config {
	if config.APIKey == "" {
		config.APIKey = os.Getenv(envVar)
	}
	return config
}
