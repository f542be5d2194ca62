package llm

import (
	"fmt"
	"strings"

	"github.com/provenia/provenia/internal/model"
)

// ExtractionSystemPrompt governs every field-extraction call
const ExtractionSystemPrompt = `You are an expert procurement analyst for consulting firms in the AEC (Architecture, Engineering, Construction) sector. Your job is to extract structured data from RFP and budget documents with high accuracy.

CRITICAL REQUIREMENTS:
1. Extract ONLY information explicitly stated in the document
2. For every extracted field, provide the source page number
3. If information is not found, use null - never guess
4. Dates should be in ISO format (YYYY-MM-DD) when possible
5. Be precise with entity names - use official names

You will receive document text with page markers like "--- PAGE X ---". Use these to track source pages.`

// StricterInstruction is prepended to the retry after a malformed response
const StricterInstruction = `Your previous response was not valid JSON. Respond with ONLY a single valid JSON object. No markdown fences, no commentary, no text before or after the JSON.

`

// BuildExtractionPrompt renders the user prompt for one document window.
// The response contract is a JSON object keyed by field name, each entry
// carrying value, source_page, and a short source_text quote.
func BuildExtractionPrompt(schema model.Schema, windowText string) string {
	var b strings.Builder

	b.WriteString("Analyze the following document excerpt and extract structured data.\n\n")
	b.WriteString("<document>\n")
	b.WriteString(windowText)
	b.WriteString("\n</document>\n\n")
	b.WriteString("Extract the following fields. For each field provide the extracted value, the source page number where you found it, and a brief quote from the source text (max 150 chars).\n\n")

	for _, f := range schema {
		b.WriteString("- ")
		b.WriteString(f.Name)
		b.WriteString(" (")
		b.WriteString(fieldTypeDescription(f.Type))
		if f.Required {
			b.WriteString(", required")
		}
		b.WriteString(")")
		if f.Hint != "" {
			b.WriteString(": ")
			b.WriteString(f.Hint)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with valid JSON in this exact format:\n{\n")
	for i, f := range schema {
		fmt.Fprintf(&b, "  %q: {\"value\": %s, \"source_page\": number or null, \"source_text\": \"brief quote or null\"}", f.Name, fieldValuePlaceholder(f.Type))
		if i < len(schema)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\nImportant:\n- Use null for any field not present in this excerpt\n- source_page must come from the --- PAGE X --- markers\n- Return only the JSON object, no other text")

	return b.String()
}

func fieldTypeDescription(t model.FieldType) string {
	switch t {
	case model.FieldTypeDate:
		return "date, YYYY-MM-DD"
	case model.FieldTypeMoney:
		return "dollar amount as a number"
	case model.FieldTypeList:
		return "list of strings"
	case model.FieldTypeStructured:
		return "JSON object"
	default:
		return "string"
	}
}

func fieldValuePlaceholder(t model.FieldType) string {
	switch t {
	case model.FieldTypeMoney:
		return "number or null"
	case model.FieldTypeList:
		return "[\"...\"] or null"
	case model.FieldTypeStructured:
		return "{...} or null"
	default:
		return "\"string\" or null"
	}
}

// ScopeCompareSystemPrompt governs the best-effort scope comparison call
const ScopeCompareSystemPrompt = `You are an expert procurement analyst specializing in identifying inconsistencies within RFP documents. You compare two statements about project scope and judge whether they materially contradict each other.

CRITICAL REQUIREMENTS:
1. Only flag REAL contradictions - conflicting statements about the same thing
2. Minor wording differences are NOT contradictions
3. Focus on conflicts that would affect proposal pricing, scheduling, or scope`

// BuildScopeComparePrompt renders the prompt for one statement pair
func BuildScopeComparePrompt(a, b model.Statement) string {
	pageA, pageB := "unknown", "unknown"
	if a.Page != nil {
		pageA = fmt.Sprintf("%d", *a.Page)
	}
	if b.Page != nil {
		pageB = fmt.Sprintf("%d", *b.Page)
	}

	return fmt.Sprintf(`Compare these two statements from the same document set:

Statement A (page %s):
%s

Statement B (page %s):
%s

Do they materially contradict each other about what is in or out of scope?

Respond with valid JSON in this exact format:
{
  "contradictory": true or false,
  "description": "brief description of the conflict, or empty string",
  "clarifying_question": "professional question to ask the client, or empty string"
}

Return only the JSON object, no other text.`, pageA, a.Text, pageB, b.Text)
}
