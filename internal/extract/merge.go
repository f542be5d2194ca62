package extract

import (
	"fmt"

	"github.com/provenia/provenia/internal/model"
)

// Merge folds per-window observations into one field per schema entry.
// Highest model-reported confidence wins; absent that, the earliest window
// wins, which keeps reruns on an unmodified document byte-identical.
// Fields come out in schema order.
func Merge(schema model.Schema, observations []model.Observation, windowErrors []error) []model.ExtractionField {
	byField := make(map[string][]model.Observation)
	for _, o := range observations {
		byField[o.FieldName] = append(byField[o.FieldName], o)
	}

	fields := make([]model.ExtractionField, 0, len(schema))
	for _, spec := range schema {
		obs := byField[spec.Name]
		if len(obs) == 0 {
			f := model.ExtractionField{
				FieldName:  spec.Name,
				Value:      nil,
				Confidence: 0,
			}
			if len(windowErrors) > 0 {
				// The field may have been missed because calls failed, not
				// because the document lacks it; say so.
				f.Error = fmt.Sprintf("extraction incomplete: %d window call(s) failed", len(windowErrors))
			}
			fields = append(fields, f)
			continue
		}

		best, _ := Best(obs)

		f := model.ExtractionField{
			FieldName: spec.Name,
			Value:     best.Value,
		}
		if best.Confidence != nil {
			f.Confidence = *best.Confidence
		}
		fields = append(fields, f)
	}

	return fields
}

// Best picks the winning observation for one field: highest model-reported
// confidence, falling back to the earliest window. Callers needing the
// winner's provenance claim use this to stay consistent with Merge.
func Best(obs []model.Observation) (model.Observation, bool) {
	if len(obs) == 0 {
		return model.Observation{}, false
	}
	best := obs[0]
	for _, o := range obs[1:] {
		if reported(o) > reported(best) {
			best = o
		}
	}
	return best, true
}

func reported(o model.Observation) float64 {
	if o.Confidence == nil {
		return -1
	}
	return *o.Confidence
}
