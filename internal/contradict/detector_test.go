package contradict

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func obs(field string, value any, page int, text string) model.Observation {
	return model.Observation{
		FieldName:   field,
		Value:       value,
		ClaimedPage: intPtr(page),
		ClaimedText: strPtr(text),
	}
}

func testSchema() model.Schema {
	return model.Schema{
		{Name: "total_budget", Type: model.FieldTypeMoney, Concept: "budget"},
		{Name: "estimated_cost", Type: model.FieldTypeMoney, Concept: "budget"},
		{Name: "bond_amount", Type: model.FieldTypeMoney, Concept: "bond"},
		{Name: "question_deadline", Type: model.FieldTypeDate, Before: "submission_deadline"},
		{Name: "submission_deadline", Type: model.FieldTypeDate},
		{Name: "scope_summary", Type: model.FieldTypeText, Concept: "scope"},
	}
}

func TestDetectNumericalDivergentBudget(t *testing.T) {
	d := NewDetector(nil, false)
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("total_budget", 1250000.0, 3, "$1,250,000"),
		obs("estimated_cost", 980000.0, 12, "$980,000"),
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(got))
	}
	c := got[0]
	if c.Type != model.ContradictionNumerical {
		t.Errorf("type = %s, want %s", c.Type, model.ContradictionNumerical)
	}
	if c.StatementA.Page == nil || *c.StatementA.Page != 3 {
		t.Errorf("statement A page = %v, want 3", c.StatementA.Page)
	}
	if c.StatementB.Page == nil || *c.StatementB.Page != 12 {
		t.Errorf("statement B page = %v, want 12", c.StatementB.Page)
	}
	if c.ClarifyingQuestion == "" {
		t.Error("expected a clarifying question")
	}
}

func TestDetectNumericalWithinTolerance(t *testing.T) {
	d := NewDetector(nil, false)
	// 1.2M vs 1.25M is a 4% spread: rounding, not a conflict
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("total_budget", 1250000.0, 3, "$1,250,000"),
		obs("estimated_cost", 1200000.0, 12, "$1.2M"),
	})
	if len(got) != 0 {
		t.Fatalf("expected no contradictions, got %d: %+v", len(got), got)
	}
}

func TestDetectNumericalDifferentConcepts(t *testing.T) {
	d := NewDetector(nil, false)
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("total_budget", 1250000.0, 3, "$1,250,000"),
		obs("bond_amount", 125000.0, 9, "$125,000"),
	})
	if len(got) != 0 {
		t.Fatalf("budget and bond should not be compared, got %d contradictions", len(got))
	}
}

func TestDetectTimelineSameFieldDivergence(t *testing.T) {
	d := NewDetector(nil, false)
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("submission_deadline", "2025-03-15", 3, "March 15, 2025"),
		obs("submission_deadline", "2025-03-22", 47, "March 22, 2025"),
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(got))
	}
	c := got[0]
	if c.Type != model.ContradictionTimeline {
		t.Errorf("type = %s, want %s", c.Type, model.ContradictionTimeline)
	}
	if *c.StatementA.Page != 3 || *c.StatementB.Page != 47 {
		t.Errorf("pages = %d/%d, want 3/47", *c.StatementA.Page, *c.StatementB.Page)
	}
}

func TestDetectTimelineOrderingViolation(t *testing.T) {
	d := NewDetector(nil, false)
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("question_deadline", "2025-04-01", 4, "April 1, 2025"),
		obs("submission_deadline", "2025-03-15", 3, "March 15, 2025"),
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(got))
	}
	if got[0].Type != model.ContradictionTimeline {
		t.Errorf("type = %s, want %s", got[0].Type, model.ContradictionTimeline)
	}
}

func TestDetectTimelineOrderingSatisfied(t *testing.T) {
	d := NewDetector(nil, false)
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("question_deadline", "2025-03-01", 4, "March 1, 2025"),
		obs("submission_deadline", "2025-03-15", 3, "March 15, 2025"),
	})
	if len(got) != 0 {
		t.Fatalf("expected no contradictions, got %d", len(got))
	}
}

func TestDetectSymmetric(t *testing.T) {
	d := NewDetector(nil, false)
	forward := []model.Observation{
		obs("submission_deadline", "2025-03-15", 3, "March 15, 2025"),
		obs("submission_deadline", "2025-03-22", 47, "March 22, 2025"),
	}
	reversed := []model.Observation{forward[1], forward[0]}

	a := d.Detect(context.Background(), testSchema(), forward)
	b := d.Detect(context.Background(), testSchema(), reversed)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("reversed input produced different contradictions:\n%+v\nvs\n%+v", a, b)
	}
}

func TestDetectNumericalSymmetric(t *testing.T) {
	d := NewDetector(nil, false)
	forward := []model.Observation{
		obs("total_budget", 1250000.0, 3, "$1,250,000"),
		obs("estimated_cost", 980000.0, 12, "$980,000"),
	}
	reversed := []model.Observation{forward[1], forward[0]}

	a := d.Detect(context.Background(), testSchema(), forward)
	b := d.Detect(context.Background(), testSchema(), reversed)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("reversed input produced different contradictions:\n%+v\nvs\n%+v", a, b)
	}
	if len(b) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(b))
	}
	// The earlier page leads the record no matter the input order
	if b[0].StatementA.Page == nil || *b[0].StatementA.Page != 3 {
		t.Errorf("statement A page = %v, want 3", b[0].StatementA.Page)
	}
	if !strings.Contains(b[0].Description, "1250000 conflicts with") {
		t.Errorf("description not in canonical order: %q", b[0].Description)
	}
}

func TestDetectDeduplicates(t *testing.T) {
	d := NewDetector(nil, false)
	same := obs("submission_deadline", "2025-03-15", 3, "March 15, 2025")
	other := obs("submission_deadline", "2025-03-22", 47, "March 22, 2025")

	got := d.Detect(context.Background(), testSchema(), []model.Observation{same, other, same, other})
	if len(got) != 1 {
		t.Fatalf("expected duplicates collapsed to 1, got %d", len(got))
	}
}

type verdictProvider struct {
	response string
	err      error
	calls    int
}

func (p *verdictProvider) Name() string { return "verdict" }

func (p *verdictProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.GenerateResponse{Text: p.response, Model: "verdict"}, nil
}

func (p *verdictProvider) IsAvailable(ctx context.Context) bool { return true }

func TestDetectScopeContradiction(t *testing.T) {
	p := &verdictProvider{response: `{"contradictory": true, "description": "renovation vs new construction", "clarifying_question": "Is the project a renovation or new construction?"}`}
	d := NewDetector(p, false)

	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("scope_summary", "Renovation of the existing east wing", 2, "renovation of the existing east wing"),
		obs("scope_summary", "Ground-up construction of a new facility", 31, "ground-up construction of a new facility"),
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(got))
	}
	c := got[0]
	if c.Type != model.ContradictionScope {
		t.Errorf("type = %s, want %s", c.Type, model.ContradictionScope)
	}
	if c.Description != "renovation vs new construction" {
		t.Errorf("description = %q", c.Description)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
}

func TestDetectScopeNotContradictory(t *testing.T) {
	p := &verdictProvider{response: `{"contradictory": false}`}
	d := NewDetector(p, false)

	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("scope_summary", "Renovation of the east wing", 2, "renovation of the east wing"),
		obs("scope_summary", "East wing renovation with MEP upgrades", 31, "east wing renovation with MEP upgrades"),
	})
	if len(got) != 0 {
		t.Fatalf("expected none, got %d", len(got))
	}
}

func TestDetectScopeProviderFailureIsSilent(t *testing.T) {
	p := &verdictProvider{err: errors.New("model offline")}
	d := NewDetector(p, false)

	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("scope_summary", "Renovation", 2, "renovation"),
		obs("scope_summary", "New construction", 31, "new construction"),
	})
	if len(got) != 0 {
		t.Fatalf("expected scope failure to find nothing, got %d", len(got))
	}
}

func TestDetectScopeNilProvider(t *testing.T) {
	d := NewDetector(nil, false)
	got := d.Detect(context.Background(), testSchema(), []model.Observation{
		obs("scope_summary", "Renovation", 2, "renovation"),
		obs("scope_summary", "New construction", 31, "new construction"),
	})
	if len(got) != 0 {
		t.Fatalf("expected nil provider to disable scope pass, got %d", len(got))
	}
}
