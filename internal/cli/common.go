package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
)

// loadConfig layers the config file (when present) over built-in defaults
func loadConfig() model.Config {
	cfg := model.DefaultConfig()

	path := viper.ConfigFileUsed()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot read config file %s: %v\n", path, err)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot parse config file %s: %v\n", path, err)
	}
	return cfg
}

// applyLLMFlags overrides the provider selection from command flags and
// checks the matching API key is available
func applyLLMFlags(cfg *model.Config, provider, modelName string) error {
	if provider != "" {
		cfg.LLM.Provider = provider
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}

	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "gemini":
		if cfg.LLM.APIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

func buildProvider(cfg model.Config) (llm.Provider, error) {
	return llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
}

func buildEmbedder(cfg model.Config) (llm.Embedder, error) {
	return llm.NewEmbedder(llm.ConfigFromModel(cfg.LLM))
}

// loadSchema reads a YAML field schema, or returns the built-in RFP schema
// when no path is given
func loadSchema(path string) (model.Schema, error) {
	if path == "" {
		return model.DefaultRFPSchema(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var schema model.Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// writeJSON writes v as indented JSON to path, or stdout for "-"
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}
