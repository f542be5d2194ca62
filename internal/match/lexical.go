package match

import (
	"strings"

	"github.com/agext/levenshtein"
)

// lexicalScore blends edit-distance similarity against the candidate title
// with query-keyword recall over the candidate's full text. The blend keeps
// short official titles ("7th Line Improvements") competitive with verbose
// queries ("7th Line road reconstruction between Maple and Elm").
func lexicalScore(query string, title, fullText string) float64 {
	q := normalizeText(query)
	if q == "" {
		return 0
	}

	sim := levenshtein.Match(q, normalizeText(title), levenshtein.NewParams())
	overlap := keywordOverlap(q, normalizeText(fullText))

	return 0.6*sim + 0.4*overlap
}

// keywordOverlap is the fraction of query tokens present in the candidate
// text. Tokens of one or two runes carry no signal and are skipped.
func keywordOverlap(query, text string) float64 {
	candidate := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		candidate[tok] = true
	}

	var total, hits int
	for _, tok := range strings.Fields(query) {
		if len([]rune(tok)) < 3 {
			continue
		}
		total++
		if candidate[tok] {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
