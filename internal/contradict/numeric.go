package contradict

import (
	"fmt"
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/provenia/provenia/internal/extract"
	"github.com/provenia/provenia/internal/model"
)

const (
	// numericTolerance is the relative divergence below which two numbers
	// are treated as the same figure. Rounding a $1,250,000 budget to
	// $1.25M must not raise a flag.
	numericTolerance = 0.05

	// nameSimilarityThreshold gates the field-name fallback used when
	// neither field carries a concept tag
	nameSimilarityThreshold = 0.72
)

type numericObs struct {
	field   model.FieldSpec
	value   float64
	concept string
	stmt    model.Statement
}

// detectNumerical flags pairs of numeric observations that describe the
// same quantity but diverge by more than the tolerance. Two observations
// describe the same quantity when they share a field, share a concept tag,
// or have near-identical field names.
func (d *Detector) detectNumerical(schema model.Schema, observations []model.Observation) []model.Contradiction {
	var nums []numericObs
	for _, o := range observations {
		spec, ok := schema.Field(o.FieldName)
		if !ok {
			continue
		}
		v, ok := numericValue(o.Value)
		if !ok {
			continue
		}
		nums = append(nums, numericObs{
			field:   spec,
			value:   v,
			concept: spec.Concept,
			stmt:    statementFor(o, extract.ValueString(o.Value)),
		})
	}

	var out []model.Contradiction
	for i := 0; i < len(nums); i++ {
		for j := i + 1; j < len(nums); j++ {
			a, b := nums[i], nums[j]
			// Canonical pair order before formatting, so a reversed
			// observation set yields the identical record
			if statementLess(b.stmt, a.stmt) {
				a, b = b, a
			}
			if !sameQuantity(a, b) {
				continue
			}
			if relativeDivergence(a.value, b.value) <= numericTolerance {
				continue
			}

			desc := fmt.Sprintf("%s of %s conflicts with %s of %s",
				quantityLabel(a), extract.ValueString(a.value),
				quantityLabel(b), extract.ValueString(b.value))
			question := fmt.Sprintf("The document gives %s on %s but %s on %s. Which figure should govern?",
				extract.ValueString(a.value), pageLabel(a.stmt.Page),
				extract.ValueString(b.value), pageLabel(b.stmt.Page))

			if c, ok := newContradiction(model.ContradictionNumerical, desc, a.stmt, b.stmt, question); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func quantityLabel(n numericObs) string {
	if n.concept != "" {
		return n.concept
	}
	return strings.ReplaceAll(n.field.Name, "_", " ")
}

// sameQuantity decides whether two numeric observations refer to the same
// underlying figure. Concept tags are authoritative when present; the
// field-name similarity fallback catches schemas that never tagged their
// fields.
func sameQuantity(a, b numericObs) bool {
	if a.field.Name == b.field.Name {
		return true
	}
	if a.concept != "" || b.concept != "" {
		return a.concept == b.concept
	}
	na := strings.ReplaceAll(a.field.Name, "_", " ")
	nb := strings.ReplaceAll(b.field.Name, "_", " ")
	return levenshtein.Match(na, nb, levenshtein.NewParams()) >= nameSimilarityThreshold
}

func relativeDivergence(a, b float64) float64 {
	max := math.Max(math.Abs(a), math.Abs(b))
	if max == 0 {
		return 0
	}
	return math.Abs(a-b) / max
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
