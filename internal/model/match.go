package model

// Candidate is one budget line item offered to the matcher.
// Callers resolve these from wherever they live; the engine never
// touches storage.
type Candidate struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`       // e.g. "Arterial Road Improvements — 7th Line"
	Description string  `json:"description"` // Project description/justification text
	Department  string  `json:"department,omitempty"`
	Amount      float64 `json:"amount,omitempty"` // Total approved budget, used as the ranking tie-break
}

// MatchResult ranks one candidate against the query scope.
// Produced fresh per matching run; nothing here is persisted by the engine.
type MatchResult struct {
	CandidateID   string  `json:"candidate_id"`
	Confidence    float64 `json:"confidence"`     // Weighted blend, [0,1]
	LexicalScore  float64 `json:"lexical_score"`  // Sequence-similarity ratio, [0,1]
	SemanticScore float64 `json:"semantic_score"` // Embedding cosine similarity, [0,1]
	Rationale     string  `json:"rationale"`      // Which signal dominated, for reviewer audit
}
