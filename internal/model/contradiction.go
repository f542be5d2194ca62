package model

// ContradictionType classifies the nature of a detected inconsistency
type ContradictionType string

const (
	ContradictionNumerical ContradictionType = "numerical" // Different numbers for the same quantity
	ContradictionTimeline  ContradictionType = "timeline"  // Dates or durations out of order
	ContradictionScope     ContradictionType = "scope"     // Divergent descriptions of the same deliverable
)

// Statement is one side of a contradiction, quoted with its source page
type Statement struct {
	Text string `json:"text"`
	Page *int   `json:"page"`
}

// Contradiction is a pair of extracted statements that cannot both hold,
// with a clarifying question a consultant could ask the client.
// Read-only once generated; Feedback is the single human-writable slot.
type Contradiction struct {
	ID          string            `json:"id"`
	Type        ContradictionType `json:"type"`
	Description string            `json:"description"`
	StatementA  Statement         `json:"statement_a"`
	StatementB  Statement         `json:"statement_b"`

	ClarifyingQuestion string `json:"clarifying_question"`

	// Feedback records whether a reviewer found the flag helpful.
	// Defined here, never written by the engine.
	Feedback *bool `json:"feedback"`
}
