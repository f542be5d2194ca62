package worker

import (
	"context"
	"testing"
	"time"
)

func TestNewLimiterBurstFloor(t *testing.T) {
	if l := NewLimiter(10, 3); l.defaultBurst != 3 {
		t.Errorf("burst = %d, want 3", l.defaultBurst)
	}
	if l := NewLimiter(10, 0); l.defaultBurst != 5 {
		t.Errorf("burst = %d, want default 5", l.defaultBurst)
	}
}

func TestLimiterWaitSeparatesHosts(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://bids.haltonhills.ca/rfp/17"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	// Another host has its own bucket and must not be throttled by the first
	if err := limiter.Wait(ctx, "https://bids.guelph.ca/rfp/3"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiterThrottlesSameHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://example.com/a") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("https://example.com/b") {
		t.Error("second immediate request to the same host should be throttled")
	}
}

func TestLimiterWaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	if err := limiter.WaitWithDelay(context.Background(), "https://example.com", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("elapsed %v, want at least 50ms", elapsed)
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Drain the burst, then the next wait must give up with the context
	_ = limiter.Allow("https://example.com")
	if err := limiter.Wait(ctx, "https://example.com"); err == nil {
		t.Error("expected context cancellation error")
	}
}
