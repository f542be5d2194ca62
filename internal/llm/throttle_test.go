package llm

import (
	"context"
	"testing"
	"time"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	p.calls++
	return &GenerateResponse{Text: "{}"}, nil
}

func (p *countingProvider) IsAvailable(ctx context.Context) bool { return true }

func TestThrottleDisabledPassesThrough(t *testing.T) {
	p := &countingProvider{}
	if got := Throttle(p, 0); got != Provider(p) {
		t.Error("zero rate should return the provider unchanged")
	}
}

func TestThrottlePacesCalls(t *testing.T) {
	p := Throttle(&countingProvider{}, 20) // 50ms per token after the burst

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := p.Generate(context.Background(), GenerateRequest{}); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 calls at 20 rps took %v, want at least ~100ms", elapsed)
	}
}

func TestThrottleHonorsCancellation(t *testing.T) {
	p := Throttle(&countingProvider{}, 0.001)

	// Burn the single burst token, then the next call must block and fail
	_, _ = p.Generate(context.Background(), GenerateRequest{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, GenerateRequest{}); err == nil {
		t.Error("expected context error while throttled")
	}
}
