// Package llm wraps the externally supplied structured-generation and
// embedding providers. The engine treats both as unreliable oracles: every
// call is timeout-bounded, retried with backoff on transient failure, and
// classified into the failure taxonomy rather than surfaced raw.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/provenia/provenia/internal/model"
)

// GenerateRequest is one structured-generation call
type GenerateRequest struct {
	// System sets the governing instruction for the call
	System string

	// Prompt is the user-turn content, including the document text
	Prompt string

	// Model overrides the configured model for this call (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse is the raw model output plus accounting metadata
type GenerateResponse struct {
	Text      string
	Model     string
	TokensIn  int
	TokensOut int
}

// Provider defines the interface for structured-generation providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate issues one completion call and returns the raw text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Embedder defines the interface for embedding providers
type Embedder interface {
	// Name returns the provider name
	Name() string

	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// EmbeddingModel name for providers that also embed
	EmbeddingModel string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout per API request, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// MaxRetries on transient provider failures
	MaxRetries int

	// RequestsPerSecond caps outbound calls; 0 disables throttling
	RequestsPerSecond float64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:    60,
		MaxTokens:  8192,
		MaxRetries: 2,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:          mc.Provider,
		Model:             mc.Model,
		EmbeddingModel:    mc.EmbeddingModel,
		APIKey:            mc.APIKey,
		BaseURL:           mc.BaseURL,
		Timeout:           mc.Timeout,
		MaxTokens:         mc.MaxTokens,
		MaxRetries:        mc.MaxRetries,
		RequestsPerSecond: mc.RequestsPerSecond,
	}
}

// classifyErr maps a raw provider error onto the failure taxonomy so callers
// can errors.Is on it without knowing which provider ran
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline exceeded") {
		return model.ErrProviderTimeout
	}
	return model.ErrProviderError
}

// StripFences removes a surrounding markdown code fence from a model
// response. Models routinely wrap JSON in ```json blocks despite
// instructions not to.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	return strings.TrimSpace(text)
}
