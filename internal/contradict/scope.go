package contradict

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/provenia/provenia/internal/extract"
	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
)

// scopeVerdict is the secondary model's answer for one statement pair
type scopeVerdict struct {
	Contradictory      bool   `json:"contradictory"`
	Description        string `json:"description"`
	ClarifyingQuestion string `json:"clarifying_question"`
}

// detectScope sends pairs of free-text statements that describe the same
// concept to a secondary model and flags the pairs it judges incompatible.
// The whole pass is best-effort: with no provider, or a provider that
// fails, it simply finds nothing.
func (d *Detector) detectScope(ctx context.Context, schema model.Schema, observations []model.Observation) []model.Contradiction {
	if d.provider == nil {
		return nil
	}

	type scopeObs struct {
		concept string
		value   any
		stmt    model.Statement
	}

	var texts []scopeObs
	for _, o := range observations {
		spec, ok := schema.Field(o.FieldName)
		if !ok || spec.Concept == "" {
			continue
		}
		if spec.Type != model.FieldTypeText && spec.Type != model.FieldTypeStructured && spec.Type != model.FieldTypeList {
			continue
		}
		texts = append(texts, scopeObs{
			concept: spec.Concept,
			value:   o.Value,
			stmt:    statementFor(o, extract.ValueString(o.Value)),
		})
	}

	var out []model.Contradiction
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			a, b := texts[i], texts[j]
			// Canonical pair order before the model sees it, so a reversed
			// observation set sends the same prompt and yields the same record
			if statementLess(b.stmt, a.stmt) {
				a, b = b, a
			}
			if a.concept != b.concept {
				continue
			}
			if reflect.DeepEqual(a.value, b.value) {
				continue
			}

			verdict, err := d.compareScope(ctx, a.stmt, b.stmt)
			if err != nil {
				if d.verbose {
					fmt.Fprintf(os.Stderr, "Warning: scope comparison failed: %v\n", err)
				}
				continue
			}
			if !verdict.Contradictory {
				continue
			}

			desc := verdict.Description
			if strings.TrimSpace(desc) == "" {
				desc = fmt.Sprintf("%s described inconsistently", a.concept)
			}
			question := verdict.ClarifyingQuestion
			if strings.TrimSpace(question) == "" {
				question = fmt.Sprintf("The %s is described one way on %s and differently on %s. Which description reflects the intended work?",
					a.concept, pageLabel(a.stmt.Page), pageLabel(b.stmt.Page))
			}

			if c, ok := newContradiction(model.ContradictionScope, desc, a.stmt, b.stmt, question); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func (d *Detector) compareScope(ctx context.Context, a, b model.Statement) (scopeVerdict, error) {
	resp, err := d.provider.Generate(ctx, llm.GenerateRequest{
		System: llm.ScopeCompareSystemPrompt,
		Prompt: llm.BuildScopeComparePrompt(a, b),
	})
	if err != nil {
		return scopeVerdict{}, err
	}

	var verdict scopeVerdict
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Text)), &verdict); err != nil {
		return scopeVerdict{}, fmt.Errorf("parsing scope verdict: %w", err)
	}
	return verdict, nil
}
