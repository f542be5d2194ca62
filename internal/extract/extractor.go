// Package extract orchestrates structured field extraction: it windows the
// document, issues one generation call per window, validates and coerces the
// responses, and merges per-window observations into one field per schema
// entry. A failed field never aborts the run; it surfaces as a
// zero-confidence record with an error annotation.
package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
	"github.com/provenia/provenia/internal/pageindex"
)

// Extractor runs schema-driven extraction against a generation provider
type Extractor struct {
	provider llm.Provider
	cfg      model.ExtractionConfig
	verbose  bool
}

// NewExtractor creates a new extractor
func NewExtractor(provider llm.Provider, cfg model.ExtractionConfig, verbose bool) *Extractor {
	if cfg.WindowRunes <= 0 {
		cfg.WindowRunes = 24000
	}
	return &Extractor{provider: provider, cfg: cfg, verbose: verbose}
}

// Result carries both the merged fields and the raw per-window observations.
// Observations feed the contradiction detector; fields are what callers
// persist once provenance is attached.
type Result struct {
	Fields       []model.ExtractionField
	Observations []model.Observation

	// WindowErrors records windows whose calls failed after the stricter
	// retry. Extraction as a whole still completes.
	WindowErrors []error
}

// Extract runs one extraction pass over the document.
// Window calls are sequential: later windows may depend on page-boundary
// context established earlier, and sequential calls keep reruns
// deterministic with a deterministic provider.
func (e *Extractor) Extract(ctx context.Context, idx *pageindex.Index, schema model.Schema) (*Result, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	compiled, err := responseSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("build response schema: %w", err)
	}

	windows := BuildWindows(idx, e.cfg.WindowRunes)
	result := &Result{}

	for wi, w := range windows {
		if err := ctx.Err(); err != nil {
			// Cancellation stops issuing further calls; the caller decides
			// whether the partial observation set is still assembled.
			return nil, err
		}

		entries, err := e.extractWindow(ctx, compiled, schema, w)
		if err != nil {
			result.WindowErrors = append(result.WindowErrors, fmt.Errorf("window %d (pages %v): %w", wi, w.Pages, err))
			if e.verbose {
				fmt.Fprintf(os.Stderr, "Warning: window %d failed: %v\n", wi, err)
			}
			continue
		}

		for _, f := range schema {
			entry, ok := entries[f.Name]
			if !ok || entry.Value == nil {
				continue
			}

			value, err := Coerce(entry.Value, f.Type)
			if err != nil {
				// Uncoercible values are discarded, not guessed at
				if e.verbose {
					fmt.Fprintf(os.Stderr, "Warning: field %s window %d: %v\n", f.Name, wi, err)
				}
				continue
			}
			if value == nil {
				continue
			}

			obs := model.Observation{
				FieldName:   f.Name,
				Value:       value,
				ClaimedPage: entry.SourcePage,
				ClaimedText: entry.SourceText,
				Window:      wi,
			}
			if entry.Confidence != nil && *entry.Confidence >= 0 && *entry.Confidence <= 1 {
				obs.Confidence = entry.Confidence
			}
			result.Observations = append(result.Observations, obs)
		}
	}

	result.Fields = Merge(schema, result.Observations, result.WindowErrors)
	return result, nil
}

// extractWindow issues the generation call for one window, retrying once
// with a stricter instruction when the response fails to parse or validate
func (e *Extractor) extractWindow(ctx context.Context, compiled *jsonschema.Schema, schema model.Schema, w Window) (map[string]responseEntry, error) {
	prompt := llm.BuildExtractionPrompt(schema, w.Text)

	resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
		System: llm.ExtractionSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExtractionFailure, err)
	}

	entries, parseErr := parseResponse(compiled, llm.StripFences(resp.Text))
	if parseErr == nil {
		return entries, nil
	}

	// One stricter retry for malformed output, then give up on the window
	resp, err = e.provider.Generate(ctx, llm.GenerateRequest{
		System: llm.ExtractionSystemPrompt,
		Prompt: llm.StricterInstruction + prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: retry: %v", model.ErrExtractionFailure, err)
	}

	entries, parseErr = parseResponse(compiled, llm.StripFences(resp.Text))
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExtractionFailure, parseErr)
	}
	return entries, nil
}
