package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/provenia/provenia/internal/model"
)

const (
	geminiDefaultModel          = "gemini-1.5-flash"
	geminiDefaultEmbeddingModel = "text-embedding-004"
)

// GeminiProvider implements Provider and Embedder for Google Gemini models.
// The client is created per call; genai clients hold a connection that
// should not outlive the request.
type GeminiProvider struct {
	apiKey string
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	return &GeminiProvider{
		apiKey: strings.TrimSpace(config.APIKey),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is properly configured
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Gemini API check failed: %v\n", err)
		return false
	}
	defer func() { _ = cl.Close() }()
	return true
}

// Generate issues one content-generation call with a JSON-only response type
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.config.Model
	}
	if modelName == "" {
		modelName = geminiDefaultModel
	}

	var out *GenerateResponse
	err := withRetries(ctx, p.config.MaxRetries, func() error {
		cl, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
		if err != nil {
			return fmt.Errorf("%w: gemini: %v", classifyErr(err), err)
		}
		defer func() { _ = cl.Close() }()

		m := cl.GenerativeModel(modelName)
		temp := float32(0)
		m.GenerationConfig = genai.GenerationConfig{
			Temperature:      &temp,
			ResponseMIMEType: "application/json",
		}
		if req.System != "" {
			m.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(req.System)},
			}
		}

		resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
		if err != nil {
			return fmt.Errorf("%w: gemini: %v", classifyErr(err), err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return fmt.Errorf("%w: gemini: empty response", model.ErrProviderError)
		}

		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}

		out = &GenerateResponse{
			Text:  text.String(),
			Model: modelName,
		}
		if resp.UsageMetadata != nil {
			out.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
			out.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Embed returns one embedding vector per input text
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embModel := p.config.EmbeddingModel
	if embModel == "" {
		embModel = geminiDefaultEmbeddingModel
	}

	var vectors [][]float32
	err := withRetries(ctx, p.config.MaxRetries, func() error {
		cl, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
		if err != nil {
			return fmt.Errorf("%w: gemini: %v", classifyErr(err), err)
		}
		defer func() { _ = cl.Close() }()

		em := cl.EmbeddingModel(embModel)
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}

		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return fmt.Errorf("%w: gemini embeddings: %v", classifyErr(err), err)
		}
		if len(resp.Embeddings) != len(texts) {
			return fmt.Errorf("%w: gemini embeddings: got %d vectors for %d inputs", model.ErrProviderError, len(resp.Embeddings), len(texts))
		}

		vectors = make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			vectors[i] = e.Values
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
