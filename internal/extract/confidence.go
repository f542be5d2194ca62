package extract

import "github.com/provenia/provenia/internal/locate"

// Confidence steps for the deterministic heuristic. A model-reported
// confidence in [0,1] takes precedence over all of these.
const (
	ConfidenceVerbatim  = 1.0  // Value found verbatim after normalization
	ConfidenceFuzzy     = 0.75 // Value located only by the fuzzy pass
	ConfidenceUnlocated = 0.5  // Value present but no provenance found
	ConfidenceMissing   = 0.0  // Nothing extracted
)

// HeuristicConfidence derives a field's confidence from how its value was
// located. Deterministic: same inputs, same score, every run.
func HeuristicConfidence(hasValue bool, span *locate.Span) float64 {
	if !hasValue {
		return ConfidenceMissing
	}
	if span == nil {
		return ConfidenceUnlocated
	}
	if span.Exact {
		return ConfidenceVerbatim
	}
	return ConfidenceFuzzy
}
