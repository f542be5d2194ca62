package match

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/provenia/provenia/internal/cache"
	"github.com/provenia/provenia/internal/model"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
	texts   int
}

func (e *fakeEmbedder) Name() string { return "fake" }

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.texts += len(texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := e.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func matchConfig() model.MatchingConfig {
	return model.MatchingConfig{LexicalWeight: 0.4, SemanticWeight: 0.6, MinConfidence: 0.1}
}

func roadCandidates() []model.Candidate {
	return []model.Candidate{
		{ID: "cap-017", Title: "7th Line Improvements", Description: "Reconstruction and widening of 7th Line", Department: "Public Works", Amount: 2400000},
		{ID: "cap-031", Title: "Water Treatment Plant Upgrade", Description: "Membrane replacement at the water treatment plant", Department: "Utilities", Amount: 5100000},
	}
}

func TestMatchRanksLexicalAndSemantic(t *testing.T) {
	query := "7th Line road reconstruction"
	e := &fakeEmbedder{vectors: map[string][]float32{
		query: {1, 0, 0},
		candidateText(roadCandidates()[0]): {0.95, 0.05, 0},
		candidateText(roadCandidates()[1]): {0, 1, 0},
	}}

	m := NewMatcher(e, "test-model", nil, matchConfig())
	got, err := m.Match(context.Background(), query, roadCandidates())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if len(got) == 0 {
		t.Fatal("expected at least one result")
	}
	if got[0].CandidateID != "cap-017" {
		t.Errorf("top match = %s, want cap-017", got[0].CandidateID)
	}
	if !strings.Contains(got[0].Rationale, "semantic similarity dominated") {
		t.Errorf("rationale should name the dominant signal, got %q", got[0].Rationale)
	}
	for _, r := range got {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("confidence %f out of [0,1] for %s", r.Confidence, r.CandidateID)
		}
		if r.Rationale == "" {
			t.Errorf("missing rationale for %s", r.CandidateID)
		}
	}
}

func TestMatchEmbedderFailure(t *testing.T) {
	e := &fakeEmbedder{err: errors.New("embedding endpoint down")}
	m := NewMatcher(e, "test-model", nil, matchConfig())

	_, err := m.Match(context.Background(), "7th Line road reconstruction", roadCandidates())
	if !errors.Is(err, model.ErrMatchingUnavailable) {
		t.Fatalf("err = %v, want ErrMatchingUnavailable", err)
	}
}

func TestMatchLexicalOnlyWithoutEmbedder(t *testing.T) {
	m := NewMatcher(nil, "", nil, matchConfig())

	got, err := m.Match(context.Background(), "7th Line road reconstruction", roadCandidates())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected a lexical-only result")
	}
	if got[0].CandidateID != "cap-017" {
		t.Errorf("top match = %s, want cap-017", got[0].CandidateID)
	}
	if got[0].SemanticScore != 0 {
		t.Errorf("semantic score = %f, want 0 without embedder", got[0].SemanticScore)
	}
}

func TestMatchConfidenceFloor(t *testing.T) {
	cfg := matchConfig()
	cfg.MinConfidence = 0.99
	m := NewMatcher(nil, "", nil, cfg)

	got, err := m.Match(context.Background(), "completely unrelated query text", roadCandidates())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected floor to drop everything, got %d results", len(got))
	}
}

func TestMatchTieBreakByAmount(t *testing.T) {
	candidates := []model.Candidate{
		{ID: "b", Title: "Bridge Rehabilitation", Amount: 100000},
		{ID: "a", Title: "Bridge Rehabilitation", Amount: 900000},
	}
	m := NewMatcher(nil, "", nil, matchConfig())

	got, err := m.Match(context.Background(), "bridge rehabilitation", candidates)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].CandidateID != "a" {
		t.Errorf("equal scores should rank larger amount first, got %s", got[0].CandidateID)
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	m := NewMatcher(nil, "", nil, matchConfig())
	if _, err := m.Match(context.Background(), "   ", roadCandidates()); err == nil {
		t.Fatal("expected error for blank query")
	}
}

func TestMatchReusesCachedEmbeddings(t *testing.T) {
	query := "7th Line road reconstruction"
	e := &fakeEmbedder{vectors: map[string][]float32{query: {1, 0, 0}}}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	m := NewMatcher(e, "test-model", store, matchConfig())

	if _, err := m.Match(context.Background(), query, roadCandidates()); err != nil {
		t.Fatalf("first Match: %v", err)
	}
	firstTexts := e.texts

	if _, err := m.Match(context.Background(), query, roadCandidates()); err != nil {
		t.Fatalf("second Match: %v", err)
	}
	if e.texts != firstTexts {
		t.Errorf("second run embedded %d new texts, want 0", e.texts-firstTexts)
	}
}

func TestMatchDeterministic(t *testing.T) {
	m := NewMatcher(nil, "", nil, matchConfig())

	first, err := m.Match(context.Background(), "7th Line road reconstruction", roadCandidates())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := m.Match(context.Background(), "7th Line road reconstruction", roadCandidates())
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d returned %d results, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d result %d = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}
