// Package contradict compares extracted statements pairwise and flags
// numeric, timeline, and scope inconsistencies, each with a clarifying
// question a consultant could send back to the client. Every detector is
// best-effort: a failure in one check never aborts the pass, because a
// false negative is acceptable and a crash is not.
package contradict

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
)

// idNamespace makes contradiction IDs stable across reruns: the same
// conflict always gets the same ID.
var idNamespace = uuid.MustParse("8f0c2c7e-08f5-4f3c-9c33-5a2d9a6f4b01")

// Detector runs the three contradiction strategies over an observation set
type Detector struct {
	provider llm.Provider // Secondary model for scope comparison; nil disables the scope pass
	verbose  bool
}

// NewDetector creates a new detector. provider may be nil, which turns the
// scope strategy off while leaving numerical and timeline checks intact.
func NewDetector(provider llm.Provider, verbose bool) *Detector {
	return &Detector{provider: provider, verbose: verbose}
}

// Detect runs all strategies and returns de-duplicated contradictions in a
// stable order. Observations should arrive provenance-resolved: their
// ClaimedPage/ClaimedText either verified by the locator or cleared.
func (d *Detector) Detect(ctx context.Context, schema model.Schema, observations []model.Observation) []model.Contradiction {
	var found []model.Contradiction

	found = append(found, d.detectNumerical(schema, observations)...)
	found = append(found, d.detectTimeline(schema, observations)...)
	found = append(found, d.detectScope(ctx, schema, observations)...)

	return dedupe(found)
}

// newContradiction canonicalizes statement order before assembling, so a
// swapped input pair produces the identical record
func newContradiction(t model.ContradictionType, description string, a, b model.Statement, question string) (model.Contradiction, bool) {
	if a.Text == b.Text && samePage(a.Page, b.Page) {
		// Self-comparison can never contradict
		return model.Contradiction{}, false
	}

	if statementLess(b, a) {
		a, b = b, a
	}

	key := fmt.Sprintf("%s|%s|%s|%s", t, pageKey(a.Page), pageKey(b.Page), description)
	return model.Contradiction{
		ID:                 uuid.NewSHA1(idNamespace, []byte(key)).String(),
		Type:               t,
		Description:        description,
		StatementA:         a,
		StatementB:         b,
		ClarifyingQuestion: question,
	}, true
}

func samePage(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func statementLess(a, b model.Statement) bool {
	pa, pb := pageOrMax(a.Page), pageOrMax(b.Page)
	if pa != pb {
		return pa < pb
	}
	return a.Text < b.Text
}

func pageOrMax(p *int) int {
	if p == nil {
		return 1 << 30
	}
	return *p
}

func pageKey(p *int) string {
	if p == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *p)
}

// pageLabel renders a page reference for question text
func pageLabel(p *int) string {
	if p == nil {
		return "an unspecified page"
	}
	return fmt.Sprintf("page %d", *p)
}

// dedupe removes duplicate contradictions by ID and sorts the remainder by
// type, then page, then description, keeping output stable across runs
func dedupe(in []model.Contradiction) []model.Contradiction {
	seen := make(map[string]bool, len(in))
	out := make([]model.Contradiction, 0, len(in))
	for _, c := range in {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		pi, pj := pageOrMax(out[i].StatementA.Page), pageOrMax(out[j].StatementA.Page)
		if pi != pj {
			return pi < pj
		}
		return out[i].Description < out[j].Description
	})
	return out
}

// statementFor builds the quoted side of a contradiction from an observation
func statementFor(o model.Observation, fallback string) model.Statement {
	text := fallback
	if o.ClaimedText != nil && strings.TrimSpace(*o.ClaimedText) != "" {
		text = *o.ClaimedText
	}
	return model.Statement{Text: text, Page: o.ClaimedPage}
}
