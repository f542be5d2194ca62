package extract

import (
	"reflect"
	"testing"

	"github.com/provenia/provenia/internal/model"
)

func TestCoerce_Dates(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-01-15", "2026-01-15"},
		{"2026-01-15 14:00", "2026-01-15 14:00"},
		{"January 15, 2026", "2026-01-15"},
		{"Jan 15, 2026", "2026-01-15"},
	}

	for _, tc := range cases {
		got, err := Coerce(tc.in, model.FieldTypeDate)
		if err != nil {
			t.Errorf("%q: expected no error, got %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %q, got %v", tc.in, tc.want, got)
		}
	}
}

func TestCoerce_BadDate(t *testing.T) {
	if _, err := Coerce("Q3 sometime", model.FieldTypeDate); err == nil {
		t.Error("Expected error for unparseable date")
	}
}

func TestCoerce_Money(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{1250000.0, 1250000},
		{"$1,250,000", 1250000},
		{"1250000.50", 1250000.50},
		{"$2,400.00", 2400},
	}

	for _, tc := range cases {
		got, err := Coerce(tc.in, model.FieldTypeMoney)
		if err != nil {
			t.Errorf("%v: expected no error, got %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%v: expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestCoerce_MoneyRejectsProse(t *testing.T) {
	if _, err := Coerce("about a million", model.FieldTypeMoney); err == nil {
		t.Error("Expected error for prose amount")
	}
}

func TestCoerce_List(t *testing.T) {
	got, err := Coerce([]any{"Geotechnical", "Survey", " "}, model.FieldTypeList)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"Geotechnical", "Survey"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCoerce_ListRejectsMixedElements(t *testing.T) {
	if _, err := Coerce([]any{"ok", 7.0}, model.FieldTypeList); err == nil {
		t.Error("Expected error for non-string element")
	}
}

func TestCoerce_EmptyBecomesNil(t *testing.T) {
	for _, tc := range []struct {
		in any
		ft model.FieldType
	}{
		{"  ", model.FieldTypeText},
		{[]any{}, model.FieldTypeList},
		{map[string]any{}, model.FieldTypeStructured},
		{nil, model.FieldTypeText},
	} {
		got, err := Coerce(tc.in, tc.ft)
		if err != nil {
			t.Errorf("%v (%s): expected no error, got %v", tc.in, tc.ft, err)
			continue
		}
		if got != nil {
			t.Errorf("%v (%s): expected nil, got %v", tc.in, tc.ft, got)
		}
	}
}

func TestValueString(t *testing.T) {
	if got := ValueString(1250000.0); got != "1250000" {
		t.Errorf("Expected whole amounts without decimals, got %q", got)
	}
	if got := ValueString([]string{"a", "b"}); got != "a, b" {
		t.Errorf("Expected joined list, got %q", got)
	}
	if got := ValueString(map[string]any{"k": "v"}); got != "" {
		t.Errorf("Structured values have no search string, got %q", got)
	}
}

func TestMerge_HighestReportedConfidenceWins(t *testing.T) {
	schema := model.Schema{{Name: "f", Type: model.FieldTypeText}}
	c1, c2 := 0.4, 0.9
	obs := []model.Observation{
		{FieldName: "f", Value: "low", Confidence: &c1, Window: 0},
		{FieldName: "f", Value: "high", Confidence: &c2, Window: 1},
	}

	fields := Merge(schema, obs, nil)
	if fields[0].Value != "high" {
		t.Errorf("Expected the higher-confidence value, got %v", fields[0].Value)
	}
	if fields[0].Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %v", fields[0].Confidence)
	}
}

func TestMerge_EarliestWindowWinsWithoutConfidence(t *testing.T) {
	schema := model.Schema{{Name: "f", Type: model.FieldTypeText}}
	obs := []model.Observation{
		{FieldName: "f", Value: "first", Window: 0},
		{FieldName: "f", Value: "second", Window: 1},
	}

	fields := Merge(schema, obs, nil)
	if fields[0].Value != "first" {
		t.Errorf("Expected the earliest observation, got %v", fields[0].Value)
	}
}
