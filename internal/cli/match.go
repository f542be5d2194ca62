package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/provenia/provenia/internal/cache"
	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/match"
	"github.com/provenia/provenia/internal/model"
)

var (
	matchOut        string
	matchCandidates string
	matchTimeout    time.Duration
	matchProvider   string
	matchModel      string
	matchLexOnly    bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match <query>",
	Short: "Rank budget line candidates against a project description",
	Long: `Match scores candidate budget lines against a project description
using a blend of lexical similarity and embedding similarity, so "7th Line
road reconstruction" finds the capital line titled "7th Line Improvements".

Candidates come from a JSON file: an array of objects with id, title,
description, department, and amount.

Example:
  provenia match "7th Line road reconstruction" --candidates budget.json
  provenia match "storm sewer upgrades" --candidates budget.json --lexical-only`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchOut, "json", "-", "output JSON path (- for stdout)")
	matchCmd.Flags().StringVar(&matchCandidates, "candidates", "", "candidate budget lines JSON file (required)")
	matchCmd.Flags().DurationVar(&matchTimeout, "timeout", 2*time.Minute, "matching timeout")
	matchCmd.Flags().StringVar(&matchProvider, "provider", "", "embedding provider (openai, gemini, ollama)")
	matchCmd.Flags().StringVar(&matchModel, "model", "", "embedding model name")
	matchCmd.Flags().BoolVar(&matchLexOnly, "lexical-only", false, "skip embeddings and score lexically")
	_ = matchCmd.MarkFlagRequired("candidates")
}

func runMatch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Output.Verbose = verbose

	candidates, err := loadCandidates(matchCandidates)
	if err != nil {
		return err
	}

	var embedder llm.Embedder
	if !matchLexOnly {
		if err := applyLLMFlags(&cfg, matchProvider, ""); err != nil {
			return err
		}
		if matchModel != "" {
			cfg.LLM.EmbeddingModel = matchModel
		}
		embedder, err = buildEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("initialize embedder: %w", err)
		}
	}

	matcher := match.NewMatcher(embedder, cfg.LLM.EmbeddingModel, cache.FromConfig(cfg.Cache), cfg.Matching)
	results, err := matcher.Match(ctx, query, candidates)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d of %d candidates above the confidence floor\n", len(results), len(candidates))
		for _, r := range results {
			fmt.Fprintf(os.Stderr, "  %.2f %s\n", r.Confidence, r.Rationale)
		}
	}
	return writeJSON(matchOut, results)
}

// loadCandidates reads budget line candidates from a JSON array file
func loadCandidates(path string) ([]model.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	var candidates []model.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidates file %s is empty", path)
	}
	return candidates, nil
}
