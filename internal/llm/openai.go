package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/provenia/provenia/internal/model"
)

// OpenAIProvider implements Provider and Embedder for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Generate issues one chat completion call
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.config.Model
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 8192
	}

	var out *GenerateResponse
	err := withRetries(ctx, p.config.MaxRetries, func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout())
		defer cancel()

		resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: modelName,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.System},
				{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
			},
			MaxTokens:   maxTokens,
			Temperature: 0, // Extraction wants reproducible output, not creativity
		})
		if err != nil {
			return fmt.Errorf("%w: openai: %v", classifyErr(err), err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: openai: empty response", model.ErrProviderError)
		}

		out = &GenerateResponse{
			Text:      resp.Choices[0].Message.Content,
			Model:     modelName,
			TokensIn:  resp.Usage.PromptTokens,
			TokensOut: resp.Usage.CompletionTokens,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Embed returns one embedding vector per input text
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embModel := openai.EmbeddingModel(p.config.EmbeddingModel)
	if p.config.EmbeddingModel == "" {
		embModel = openai.SmallEmbedding3
	}

	var vectors [][]float32
	err := withRetries(ctx, p.config.MaxRetries, func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout())
		defer cancel()

		resp, err := p.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: texts,
			Model: embModel,
		})
		if err != nil {
			return fmt.Errorf("%w: openai embeddings: %v", classifyErr(err), err)
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("%w: openai embeddings: got %d vectors for %d inputs", model.ErrProviderError, len(resp.Data), len(texts))
		}

		vectors = make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			vectors[i] = d.Embedding
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (p *OpenAIProvider) timeout() time.Duration {
	if p.config.Timeout > 0 {
		return time.Duration(p.config.Timeout) * time.Second
	}
	return 60 * time.Second
}
