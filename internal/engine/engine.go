// Package engine wires the full pipeline: page indexing, schema-driven
// extraction, provenance location, confidence scoring, and contradiction
// detection. One call in, one complete result out; partial failures stay
// inside the result instead of aborting it.
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/provenia/provenia/internal/contradict"
	"github.com/provenia/provenia/internal/extract"
	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/locate"
	"github.com/provenia/provenia/internal/model"
	"github.com/provenia/provenia/internal/pageindex"
)

// Engine runs extraction pipelines against one generation provider
type Engine struct {
	provider llm.Provider
	cfg      model.Config
}

// New creates an engine. The provider handles both extraction and the
// scope-comparison calls of the contradiction detector.
func New(provider llm.Provider, cfg model.Config) *Engine {
	return &Engine{provider: provider, cfg: cfg}
}

// Result is one complete extraction run
type Result struct {
	Fields         []model.ExtractionField `json:"fields"`
	Contradictions []model.Contradiction   `json:"contradictions"`

	// WindowErrors lists extraction calls that failed after retries. The
	// affected fields already carry error annotations; this is the detail.
	WindowErrors []string `json:"window_errors,omitempty"`
}

// EvidenceMap projects the result into the per-field display contract:
// only fields with verified provenance appear
func (r *Result) EvidenceMap() map[string]model.Evidence {
	out := make(map[string]model.Evidence)
	for _, f := range r.Fields {
		if !f.HasProvenance() {
			continue
		}
		out[f.FieldName] = model.Evidence{
			SourceText: *f.SourceText,
			Page:       *f.SourcePage,
			Confidence: f.Confidence,
		}
	}
	return out
}

// Process runs the whole pipeline over raw page texts.
// The returned result is complete: every schema field appears exactly once,
// carries provenance exactly when the locator verified it, and has a
// deterministic confidence unless the model reported its own.
func (e *Engine) Process(ctx context.Context, raw []pageindex.RawPage, schema model.Schema) (*Result, error) {
	idx, err := pageindex.Build(raw)
	if err != nil {
		return nil, fmt.Errorf("indexing document: %w", err)
	}

	extractor := extract.NewExtractor(e.provider, e.cfg.Extraction, e.cfg.Output.Verbose)
	extracted, err := extractor.Extract(ctx, idx, schema)
	if err != nil {
		return nil, err
	}

	byField := make(map[string][]model.Observation)
	for _, o := range extracted.Observations {
		byField[o.FieldName] = append(byField[o.FieldName], o)
	}

	result := &Result{Fields: extracted.Fields}
	for _, werr := range extracted.WindowErrors {
		result.WindowErrors = append(result.WindowErrors, werr.Error())
	}

	for i := range result.Fields {
		f := &result.Fields[i]
		best, ok := extract.Best(byField[f.FieldName])
		if !ok {
			f.ClearProvenance()
			continue
		}
		span, lerr := e.locateField(best, idx)
		if lerr != nil && e.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", lerr)
		}
		e.scoreField(f, best, span)
	}

	detector := contradict.NewDetector(e.provider, e.cfg.Output.Verbose)
	result.Contradictions = detector.Detect(ctx, schema, resolveClaims(schema, extracted.Observations, idx))

	return result, nil
}

// locateField hunts for the winning observation's source span. The model's
// quoted source text is the better needle when present; the rendered value
// is the fallback. A present value with no confident span reports
// ErrAmbiguousProvenance, which is non-fatal: the field keeps its value and
// loses its provenance.
func (e *Engine) locateField(best model.Observation, idx *pageindex.Index) (*locate.Span, error) {
	if best.ClaimedText != nil {
		if span := locate.Locate(*best.ClaimedText, idx); span != nil {
			return span, nil
		}
	}
	if span := locate.Locate(extract.ValueString(best.Value), idx); span != nil {
		return span, nil
	}
	if best.Value == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrAmbiguousProvenance, best.FieldName)
}

// scoreField attaches provenance and confidence to one merged field.
// Provenance is set exactly when the locator found a span; a model-reported
// confidence survives, otherwise the location heuristic decides.
func (e *Engine) scoreField(f *model.ExtractionField, best model.Observation, span *locate.Span) {
	if span == nil {
		f.ClearProvenance()
	} else {
		f.SetProvenance(span.Page, truncate(span.Text, e.cfg.Extraction.MaxSourceTextLen))
	}

	if best.Confidence != nil {
		f.Confidence = *best.Confidence
		return
	}
	f.Confidence = extract.HeuristicConfidence(f.Value != nil, span)
}

// resolveClaims verifies each observation's provenance claim before the
// detector sees it, so contradiction statements cite real pages
func resolveClaims(schema model.Schema, observations []model.Observation, idx *pageindex.Index) []model.Observation {
	resolved := make([]model.Observation, len(observations))
	for i, o := range observations {
		if o.ClaimedText != nil {
			if span := locate.Locate(*o.ClaimedText, idx); span != nil {
				page, text := span.Page, span.Text
				o.ClaimedPage, o.ClaimedText = &page, &text
				resolved[i] = o
				continue
			}
		}
		if span := locate.Locate(extract.ValueString(o.Value), idx); span != nil {
			page, text := span.Page, span.Text
			o.ClaimedPage, o.ClaimedText = &page, &text
		} else {
			// Nothing located: drop the model's claim rather than cite a
			// page the document may not have.
			o.ClaimedPage, o.ClaimedText = nil, nil
		}
		resolved[i] = o
	}
	return resolved
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
