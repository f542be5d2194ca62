package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// throttledProvider gates every call through a token bucket so batch runs
// stay under the provider's rate limits instead of tripping 429s
type throttledProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// Throttle wraps a provider with a requests-per-second cap. A non-positive
// rate returns the provider unchanged.
func Throttle(p Provider, requestsPerSecond float64) Provider {
	if requestsPerSecond <= 0 {
		return p
	}
	return &throttledProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (t *throttledProvider) Name() string { return t.inner.Name() }

func (t *throttledProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Generate(ctx, req)
}

func (t *throttledProvider) IsAvailable(ctx context.Context) bool {
	return t.inner.IsAvailable(ctx)
}

// throttledEmbedder applies the same cap to embedding calls
type throttledEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

// ThrottleEmbedder wraps an embedder with a requests-per-second cap
func ThrottleEmbedder(e Embedder, requestsPerSecond float64) Embedder {
	if requestsPerSecond <= 0 {
		return e
	}
	return &throttledEmbedder{
		inner:   e,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (t *throttledEmbedder) Name() string { return t.inner.Name() }

func (t *throttledEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Embed(ctx, texts)
}
