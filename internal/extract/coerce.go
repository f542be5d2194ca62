package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/provenia/provenia/internal/model"
)

// dateLayouts are tried in order when coercing a string to a date.
// Layouts with a time component come first so "2026-01-15 14:00" doesn't
// lose its time to a shorter match.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
}

// Coerce converts a raw JSON value into the declared field type.
// Only unambiguous conversions are performed; anything else errors and the
// caller discards the observation.
func Coerce(value any, t model.FieldType) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch t {
	case model.FieldTypeText:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		return s, nil

	case model.FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected date string, got %T", value)
		}
		return coerceDate(s)

	case model.FieldTypeMoney:
		return coerceMoney(value)

	case model.FieldTypeList:
		return coerceList(value)

	case model.FieldTypeStructured:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", value)
		}
		if len(m) == 0 {
			return nil, nil
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unknown field type %q", t)
	}
}

// coerceDate normalizes a date string to ISO form, keeping a time component
// when the source had one
func coerceDate(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "15:04") {
			return ts.Format("2006-01-02 15:04"), nil
		}
		return ts.Format("2006-01-02"), nil
	}

	return nil, fmt.Errorf("unparseable date %q", s)
}

// coerceMoney accepts JSON numbers and common money strings ("$1,234.56")
func coerceMoney(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable amount %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("expected number or amount string, got %T", value)
	}
}

// coerceList accepts arrays of strings; empty lists become nil
func coerceList(value any) (any, error) {
	arr, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", value)
	}

	out := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %T", el)
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// ValueString renders a coerced value the way the locator should search for
// it. Structured values have no single source string; the model's claimed
// quote is the only lead for those.
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	case []string:
		return strings.Join(v, ", ")
	default:
		return ""
	}
}
