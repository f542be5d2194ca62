package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/provenia/provenia/internal/model"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", "Here is the result:\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestWithRetries_TransientThenSuccess(t *testing.T) {
	origSleep := retrySleepFunc
	retrySleepFunc = func(ctx context.Context, d time.Duration) error { return nil }
	defer func() { retrySleepFunc = origSleep }()

	calls := 0
	err := withRetries(context.Background(), 2, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: flaky", model.ErrProviderTimeout)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestWithRetries_NonRetryableStops(t *testing.T) {
	origSleep := retrySleepFunc
	retrySleepFunc = func(ctx context.Context, d time.Duration) error { return nil }
	defer func() { retrySleepFunc = origSleep }()

	calls := 0
	permanent := errors.New("bad request")
	err := withRetries(context.Background(), 3, func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("Expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt for a non-retryable error, got %d", calls)
	}
}

func TestWithRetries_ExhaustsBudget(t *testing.T) {
	origSleep := retrySleepFunc
	retrySleepFunc = func(ctx context.Context, d time.Duration) error { return nil }
	defer func() { retrySleepFunc = origSleep }()

	calls := 0
	err := withRetries(context.Background(), 2, func() error {
		calls++
		return fmt.Errorf("%w: down", model.ErrProviderError)
	})

	if !errors.Is(err, model.ErrProviderError) {
		t.Fatalf("Expected ErrProviderError, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestClassifyErr(t *testing.T) {
	if got := classifyErr(context.DeadlineExceeded); !errors.Is(got, model.ErrProviderTimeout) {
		t.Errorf("Expected timeout classification, got %v", got)
	}
	if got := classifyErr(errors.New("connection refused")); !errors.Is(got, model.ErrProviderError) {
		t.Errorf("Expected provider error classification, got %v", got)
	}
	if got := classifyErr(nil); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	schema := model.Schema{
		{Name: "client_name", Type: model.FieldTypeText, Required: true},
		{Name: "submission_deadline", Type: model.FieldTypeDate},
	}

	prompt := BuildExtractionPrompt(schema, "--- PAGE 1 ---\nCity of Brampton RFP")

	for _, want := range []string{"client_name", "submission_deadline", "--- PAGE 1 ---", "source_page", "source_text"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "mystery"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
	if _, err := NewProvider(Config{}); err == nil {
		t.Error("Expected error for empty provider")
	}
}

func TestNewEmbedder_AnthropicRejected(t *testing.T) {
	if _, err := NewEmbedder(Config{Provider: "anthropic", APIKey: "k"}); err == nil {
		t.Error("Expected error: anthropic cannot embed")
	}
}
