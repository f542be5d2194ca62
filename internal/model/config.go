package model

import "time"

// Config is the full engine configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Matching    MatchingConfig    `yaml:"matching"`
	Scrape      ScrapeConfig      `yaml:"scrape"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the structured-generation and embedding provider
type LLMConfig struct {
	Provider       string `yaml:"provider"` // openai, anthropic, gemini, ollama
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	Timeout        int    `yaml:"timeout"` // seconds, per call
	MaxTokens      int    `yaml:"max_tokens"`
	MaxRetries     int    `yaml:"max_retries"` // transient provider failures

	// RequestsPerSecond caps outbound provider calls
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// ExtractionConfig tunes the field extractor
type ExtractionConfig struct {
	// WindowRunes is the page-text budget per model call. Windows never
	// split a page; an oversized page becomes its own window.
	WindowRunes int `yaml:"window_runes"`

	// MaxSourceTextLen truncates quoted source spans for display
	MaxSourceTextLen int `yaml:"max_source_text_len"`
}

// MatchingConfig tunes the fuzzy matcher
type MatchingConfig struct {
	LexicalWeight  float64 `yaml:"lexical_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`

	// MinConfidence drops candidates below the floor from the ranked list
	MinConfidence float64 `yaml:"min_confidence"`
}

// ScrapeConfig configures the quick-scan fetcher
type ScrapeConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots"`
	RatePerSecond float64       `yaml:"rate_per_second"`

	// Explicit proxies; empty falls back to the standard environment variables
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
}

// CacheConfig configures embedding and fetch caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // empty disables the disk tier
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	// BatchWorkers is the number of documents extracted in parallel.
	// Within one document, window calls stay sequential.
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "",
			EmbeddingModel:    "",
			Timeout:           60,
			MaxTokens:         8192,
			MaxRetries:        2,
			RequestsPerSecond: 2,
		},
		Extraction: ExtractionConfig{
			WindowRunes:      24000,
			MaxSourceTextLen: 200,
		},
		Matching: MatchingConfig{
			LexicalWeight:  0.4,
			SemanticWeight: 0.6,
			MinConfidence:  0.1,
		},
		Scrape: ScrapeConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Provenia/0.1 (+https://github.com/provenia/provenia)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
			RatePerSecond: 1,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{},
	}
}
