package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/provenia/provenia/internal/model"
)

// OllamaProvider implements Provider and Embedder for local Ollama models
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type ollamaErrorResponse struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second // Local models can be slow
	}

	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if Ollama is running
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (connection to %s): %v\n", p.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Generate issues one completion call with JSON output format
func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.config.Model
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name is required")
	}

	body := ollamaGenerateRequest{
		Model:  modelName,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: 0,
			NumPredict:  req.MaxTokens,
		},
	}

	var out *GenerateResponse
	err := withRetries(ctx, p.config.MaxRetries, func() error {
		var apiResp ollamaGenerateResponse
		if err := p.post(ctx, "/api/generate", body, &apiResp); err != nil {
			return err
		}
		out = &GenerateResponse{
			Text:      apiResp.Response,
			Model:     apiResp.Model,
			TokensIn:  apiResp.PromptEvalCount,
			TokensOut: apiResp.EvalCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Embed returns one embedding vector per input text.
// Ollama's embeddings endpoint takes one prompt at a time.
func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embModel := p.config.EmbeddingModel
	if embModel == "" {
		embModel = p.config.Model
	}
	if embModel == "" {
		return nil, fmt.Errorf("ollama embedding model name is required")
	}

	vectors := make([][]float32, 0, len(texts))
	for _, t := range texts {
		var apiResp ollamaEmbedResponse
		err := withRetries(ctx, p.config.MaxRetries, func() error {
			return p.post(ctx, "/api/embeddings", ollamaEmbedRequest{Model: embModel, Prompt: t}, &apiResp)
		})
		if err != nil {
			return nil, err
		}

		vec := make([]float32, len(apiResp.Embedding))
		for i, v := range apiResp.Embedding {
			vec[i] = float32(v)
		}
		vectors = append(vectors, vec)
	}

	return vectors, nil
}

// post sends one JSON request and decodes the response
func (p *OllamaProvider) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: ollama: %v", classifyErr(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ollama: read body: %v", model.ErrProviderError, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%w: ollama: %s (HTTP %d)", model.ErrProviderError, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: ollama: HTTP %d", model.ErrProviderError, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: ollama: decode response: %v", model.ErrProviderError, err)
	}
	return nil
}
