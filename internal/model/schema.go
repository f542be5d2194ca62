package model

import "fmt"

// FieldType categorizes the value a schema field carries
type FieldType string

const (
	FieldTypeText       FieldType = "text"       // Free-form string
	FieldTypeDate       FieldType = "date"       // ISO date, coerced from strings where unambiguous
	FieldTypeMoney      FieldType = "money"      // Dollar amount, coerced from "$1,234.56" style strings
	FieldTypeList       FieldType = "list"       // List of strings
	FieldTypeStructured FieldType = "structured" // Nested JSON object
)

// FieldSpec declares one field the extractor must attempt to produce.
// Schemas are data, not code: adding a field never requires new extraction logic.
type FieldSpec struct {
	Name     string    `json:"name" yaml:"name"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required" yaml:"required"`

	// Concept tags fields that describe the same real-world quantity so the
	// numerical detector can pair them across sections.
	Concept string `json:"concept,omitempty" yaml:"concept,omitempty"`

	// Before names a date field whose value must come after this one
	// (e.g. question_deadline is Before submission_deadline).
	Before string `json:"before,omitempty" yaml:"before,omitempty"`

	// Hint is an extra instruction appended to the extraction prompt.
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Schema is the ordered list of fields to extract from a document
type Schema []FieldSpec

// Field returns the spec for a field name
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks the schema for duplicate names, unknown types, and
// dangling ordering constraints
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no fields")
	}

	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("schema field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate schema field: %s", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case FieldTypeText, FieldTypeDate, FieldTypeMoney, FieldTypeList, FieldTypeStructured:
		default:
			return fmt.Errorf("field %s: unknown type %q", f.Name, f.Type)
		}
	}

	for _, f := range s {
		if f.Before == "" {
			continue
		}
		if f.Type != FieldTypeDate {
			return fmt.Errorf("field %s: ordering constraint on non-date field", f.Name)
		}
		other, ok := s.Field(f.Before)
		if !ok {
			return fmt.Errorf("field %s: ordering constraint references unknown field %s", f.Name, f.Before)
		}
		if other.Type != FieldTypeDate {
			return fmt.Errorf("field %s: ordering constraint references non-date field %s", f.Name, f.Before)
		}
	}

	return nil
}

// DefaultRFPSchema returns the built-in field schema for RFP documents.
// Field inventory follows the standard AEC procurement layout: identity,
// contact, key dates, scope, disciplines, requirements, and risk flags.
func DefaultRFPSchema() Schema {
	return Schema{
		{Name: "client_name", Type: FieldTypeText, Required: true, Hint: "use the official issuing entity name"},
		{Name: "rfp_number", Type: FieldTypeText},
		{Name: "opportunity_title", Type: FieldTypeText, Required: true},
		{Name: "client_contact", Type: FieldTypeStructured, Hint: "object with name, email, phone, role"},
		{Name: "published_date", Type: FieldTypeDate},
		{Name: "question_deadline", Type: FieldTypeDate, Before: "submission_deadline"},
		{Name: "submission_deadline", Type: FieldTypeDate, Required: true},
		{Name: "contract_duration", Type: FieldTypeText},
		{Name: "scope_summary", Type: FieldTypeText, Required: true, Concept: "scope", Hint: "2-3 sentence summary of project scope"},
		{Name: "required_internal_disciplines", Type: FieldTypeList, Hint: "disciplines the firm needs internally"},
		{Name: "required_external_disciplines", Type: FieldTypeList, Hint: "sub-consultant disciplines needed"},
		{Name: "evaluation_criteria", Type: FieldTypeStructured, Hint: "technical_weight, financial_weight, criteria list"},
		{Name: "reference_requirements", Type: FieldTypeStructured},
		{Name: "insurance_requirements", Type: FieldTypeStructured},
		{Name: "risk_flags", Type: FieldTypeList, Hint: "concerning terms, unusual requirements, red flags"},
	}
}
