package contradict

import (
	"fmt"
	"strings"
	"time"

	"github.com/provenia/provenia/internal/model"
)

// canonical layouts produced by field coercion
var canonicalDateLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

type dateObs struct {
	field model.FieldSpec
	when  time.Time
	stmt  model.Statement
}

// detectTimeline flags two kinds of scheduling conflicts: a date field that
// lands after a field the schema orders it before, and a single field whose
// observations disagree on what the date is at all.
func (d *Detector) detectTimeline(schema model.Schema, observations []model.Observation) []model.Contradiction {
	byField := make(map[string][]dateObs)
	var order []string
	for _, o := range observations {
		spec, ok := schema.Field(o.FieldName)
		if !ok || spec.Type != model.FieldTypeDate {
			continue
		}
		s, ok := o.Value.(string)
		if !ok {
			continue
		}
		when, ok := parseCanonicalDate(s)
		if !ok {
			continue
		}
		if _, seen := byField[o.FieldName]; !seen {
			order = append(order, o.FieldName)
		}
		byField[o.FieldName] = append(byField[o.FieldName], dateObs{
			field: spec,
			when:  when,
			stmt:  statementFor(o, s),
		})
	}

	var out []model.Contradiction

	// Ordering constraints declared on the schema
	for _, name := range order {
		for _, a := range byField[name] {
			if a.field.Before == "" {
				continue
			}
			for _, b := range byField[a.field.Before] {
				if !a.when.After(b.when) {
					continue
				}
				desc := fmt.Sprintf("%s (%s) falls after %s (%s)",
					fieldLabel(a.field.Name), a.when.Format("2006-01-02"),
					fieldLabel(b.field.Name), b.when.Format("2006-01-02"))
				question := fmt.Sprintf("The %s on %s is later than the %s on %s. Should the dates be swapped, or is one of them incorrect?",
					fieldLabel(a.field.Name), pageLabel(a.stmt.Page),
					fieldLabel(b.field.Name), pageLabel(b.stmt.Page))
				if c, ok := newContradiction(model.ContradictionTimeline, desc, a.stmt, b.stmt, question); ok {
					out = append(out, c)
				}
			}
		}
	}

	// The same field reported with different dates in different places
	for _, name := range order {
		obs := byField[name]
		for i := 0; i < len(obs); i++ {
			for j := i + 1; j < len(obs); j++ {
				if obs[i].when.Equal(obs[j].when) {
					continue
				}
				a, b := obs[i], obs[j]
				// Canonical pair order before formatting, so a reversed
				// observation set yields the identical record
				if statementLess(b.stmt, a.stmt) {
					a, b = b, a
				}
				desc := fmt.Sprintf("%s stated as both %s and %s",
					fieldLabel(name),
					a.when.Format("2006-01-02"),
					b.when.Format("2006-01-02"))
				question := fmt.Sprintf("The %s appears as %s on %s but as %s on %s. Which date is correct?",
					fieldLabel(name),
					a.when.Format("2006-01-02"), pageLabel(a.stmt.Page),
					b.when.Format("2006-01-02"), pageLabel(b.stmt.Page))
				if c, ok := newContradiction(model.ContradictionTimeline, desc, a.stmt, b.stmt, question); ok {
					out = append(out, c)
				}
			}
		}
	}

	return out
}

func fieldLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func parseCanonicalDate(s string) (time.Time, bool) {
	for _, layout := range canonicalDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
