// Package match ranks budget-line candidates against an extracted project
// description using a lexical/semantic blend. Lexical scoring works
// offline; semantic scoring needs an embedding provider and fails the
// whole match when that provider is down, because an empty result must
// mean "no match", never "could not look".
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/provenia/provenia/internal/cache"
	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
)

// Matcher ranks candidates for extracted project descriptions
type Matcher struct {
	embedder       llm.Embedder
	embeddingModel string
	store          cache.Cache
	cfg            model.MatchingConfig
}

// NewMatcher creates a matcher. store may be nil to skip embedding reuse;
// embedder may be nil, which degrades scoring to lexical-only.
func NewMatcher(embedder llm.Embedder, embeddingModel string, store cache.Cache, cfg model.MatchingConfig) *Matcher {
	return &Matcher{
		embedder:       embedder,
		embeddingModel: embeddingModel,
		store:          store,
		cfg:            cfg,
	}
}

// Match scores every candidate against the query and returns the ones at
// or above the confidence floor, best first. Ordering is deterministic:
// confidence, then amount, then candidate ID.
func (m *Matcher) Match(ctx context.Context, query string, candidates []model.Candidate) ([]model.MatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("match query is empty")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	semantic, err := m.semanticScores(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	results := make([]model.MatchResult, 0, len(candidates))
	for i, c := range candidates {
		lex := lexicalScore(query, c.Title, candidateText(c))

		var sem float64
		lexW, semW := m.cfg.LexicalWeight, m.cfg.SemanticWeight
		if semantic != nil {
			sem = semantic[i]
		} else {
			// No embedder: lexical carries the full weight
			lexW, semW = 1, 0
		}

		confidence := lexW*lex + semW*sem
		if confidence < m.cfg.MinConfidence {
			continue
		}

		results = append(results, model.MatchResult{
			CandidateID:   c.ID,
			Confidence:    confidence,
			LexicalScore:  lex,
			SemanticScore: sem,
			Rationale:     rationale(c, lex, sem, lexW, semW, semantic != nil),
		})
	}

	byID := make(map[string]model.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		ai, aj := byID[results[i].CandidateID].Amount, byID[results[j].CandidateID].Amount
		if ai != aj {
			return ai > aj
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	return results, nil
}

// semanticScores returns one cosine-similarity score per candidate, or nil
// when no embedder is configured
func (m *Matcher) semanticScores(ctx context.Context, query string, candidates []model.Candidate) ([]float64, error) {
	if m.embedder == nil {
		return nil, nil
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	for _, c := range candidates {
		texts = append(texts, candidateText(c))
	}

	vectors, err := m.embedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMatchingUnavailable, err)
	}

	queryVec := vectors[0]
	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = clamp01(cosine(queryVec, vectors[i+1]))
	}
	return scores, nil
}

// embedAll resolves vectors for all texts, serving cache hits locally and
// batching the misses into one provider call
func (m *Matcher) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missing []int
	for i, text := range texts {
		if v, ok := m.cachedVector(text); ok {
			vectors[i] = v
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) > 0 {
		batch := make([]string, len(missing))
		for i, idx := range missing {
			batch[i] = texts[idx]
		}

		fresh, err := m.embedder.Embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(fresh) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(batch))
		}

		for i, idx := range missing {
			vectors[idx] = fresh[i]
			m.storeVector(texts[idx], fresh[i])
		}
	}

	return vectors, nil
}

func (m *Matcher) cachedVector(text string) ([]float32, bool) {
	if m.store == nil {
		return nil, false
	}
	raw, found := m.store.Get(cache.EmbeddingKey(m.embeddingModel, text))
	if !found {
		return nil, false
	}
	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

func (m *Matcher) storeVector(text string, v []float32) {
	if m.store == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = m.store.Set(cache.EmbeddingKey(m.embeddingModel, text), raw, 0)
}

func candidateText(c model.Candidate) string {
	parts := []string{c.Title}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if c.Department != "" {
		parts = append(parts, c.Department)
	}
	return strings.Join(parts, " ")
}

// rationale names the signal whose weighted contribution carried the score,
// so a reviewer can see at a glance why a candidate ranked where it did
func rationale(c model.Candidate, lex, sem, lexW, semW float64, hasSemantic bool) string {
	if !hasSemantic {
		return fmt.Sprintf("%q: lexical similarity %.2f (no embedding provider)", c.Title, lex)
	}
	dominant := "semantic similarity dominated"
	if lexW*lex > semW*sem {
		dominant = "lexical similarity dominated"
	}
	return fmt.Sprintf("%q: lexical similarity %.2f, semantic similarity %.2f; %s", c.Title, lex, sem, dominant)
}

// cosine computes cosine similarity between two vectors. Mismatched or
// zero-length vectors score zero.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
