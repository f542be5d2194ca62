package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/provenia/provenia/internal/model"
)

// responseSchema compiles a JSON Schema for the model's response from the
// field schema, so a malformed response is rejected before any coercion runs
func responseSchema(schema model.Schema) (*jsonschema.Schema, error) {
	properties := map[string]any{}
	for _, f := range schema {
		properties[f.Name] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value":       valueSchema(f.Type),
				"source_page": map[string]any{"type": []string{"integer", "null"}},
				"source_text": map[string]any{"type": []string{"string", "null"}},
				"confidence":  map[string]any{"type": []string{"number", "null"}},
			},
			"required": []string{"value"},
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("response.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// valueSchema returns the JSON Schema fragment for one field's value slot.
// Money accepts strings so "$1.2M budget as text" style responses survive
// validation and reach the coercer, which decides.
func valueSchema(t model.FieldType) map[string]any {
	switch t {
	case model.FieldTypeMoney:
		return map[string]any{"type": []string{"number", "string", "null"}}
	case model.FieldTypeList:
		return map[string]any{
			"type":  []string{"array", "null"},
			"items": map[string]any{"type": "string"},
		}
	case model.FieldTypeStructured:
		return map[string]any{"type": []string{"object", "null"}}
	default:
		return map[string]any{"type": []string{"string", "null"}}
	}
}

// parseResponse unmarshals and validates one model response against the
// compiled schema, returning the per-field raw entries
func parseResponse(compiled *jsonschema.Schema, raw string) (map[string]responseEntry, error) {
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	if err := compiled.Validate(generic); err != nil {
		return nil, fmt.Errorf("response does not match schema: %w", err)
	}

	var entries map[string]responseEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return entries, nil
}

// responseEntry is the per-field shape the prompts ask the model for
type responseEntry struct {
	Value      any      `json:"value"`
	SourcePage *int     `json:"source_page"`
	SourceText *string  `json:"source_text"`
	Confidence *float64 `json:"confidence"`
}
