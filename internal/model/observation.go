package model

// Observation is one field value as reported by a single model call over a
// single document window, before provenance verification and merging.
// Several observations of the same field can disagree; the contradiction
// detector feeds on exactly that.
type Observation struct {
	FieldName string
	Value     any

	// Confidence is the model-reported certainty, if the provider supplied
	// one. Nil means the deterministic heuristic decides later.
	Confidence *float64

	// ClaimedPage/ClaimedText are the model's own claim of where the value
	// came from. Claims are leads for the locator, never trusted provenance.
	ClaimedPage *int
	ClaimedText *string

	// Window is the index of the document window that produced this
	Window int
}
