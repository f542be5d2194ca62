package model

// ExtractionField is one extracted value with its provenance and confidence.
// Created once per extraction run; the verification slots are only ever set
// by a later human action outside this engine.
type ExtractionField struct {
	FieldName  string  `json:"field_name"`
	Value      any     `json:"value"`      // Typed per the schema: string, float64, []string, or map[string]any
	Confidence float64 `json:"confidence"` // [0,1]; 0 means nothing was found or the call failed
	SourcePage *int    `json:"source_page"`
	SourceText *string `json:"source_text"`

	// Human verification slots, defined here but never written by the engine
	Verified   bool    `json:"verified"`
	VerifiedBy *string `json:"verified_by"`

	// Error distinguishes "engine found nothing" from "engine could not run"
	Error string `json:"error,omitempty"`
}

// HasProvenance reports whether the field carries a source span.
// SourcePage and SourceText are always set or cleared together.
func (f ExtractionField) HasProvenance() bool {
	return f.SourcePage != nil && f.SourceText != nil
}

// Failed reports whether this field's extraction call errored out
func (f ExtractionField) Failed() bool {
	return f.Error != ""
}

// SetProvenance sets both provenance halves at once
func (f *ExtractionField) SetProvenance(page int, text string) {
	f.SourcePage = &page
	f.SourceText = &text
}

// ClearProvenance clears both provenance halves at once
func (f *ExtractionField) ClearProvenance() {
	f.SourcePage = nil
	f.SourceText = nil
}

// Evidence is the per-field display contract handed to callers:
// where the value came from and how sure the engine is
type Evidence struct {
	SourceText string  `json:"source_text"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
}
