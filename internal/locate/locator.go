// Package locate finds the page and text span a claimed extracted value
// came from. It is a pure lookup: extraction produces values, this package
// produces provenance, and the two can be retried independently.
package locate

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/provenia/provenia/internal/pageindex"
)

// Span is a located source reference
type Span struct {
	Page  int
	Text  string // The matching slice of normalized page text
	Exact bool   // True when the exact pass matched, false for fuzzy
}

// DriftRatio bounds the fuzzy pass: matches are accepted up to this share
// of the value length in edits.
const DriftRatio = 0.10

// Locate finds the best-matching page and span for value.
// Order: exact normalized substring (earliest page wins), then bounded
// fuzzy search, then nil. Deterministic for identical inputs.
func Locate(value string, idx *pageindex.Index) *Span {
	needle := pageindex.Normalize(value)
	if needle == "" || idx == nil {
		return nil
	}

	if s := exact(needle, idx); s != nil {
		return s
	}
	return fuzzy(needle, idx)
}

// exact searches for the value as a case-insensitive substring of each
// page's normalized text, in document order. Rune offsets throughout so
// multibyte text cannot skew the returned span.
func exact(needle string, idx *pageindex.Index) *Span {
	nr := []rune(strings.ToLower(needle))
	for _, p := range idx.Pages() {
		hay := []rune(p.Norm)
		lowerHay := []rune(strings.ToLower(p.Norm))
		if at := runeIndex(lowerHay, nr); at >= 0 {
			return &Span{Page: p.Number, Text: string(hay[at : at+len(nr)]), Exact: true}
		}
	}
	return nil
}

// runeIndex returns the first offset of needle in hay, or -1
func runeIndex(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		j := 0
		for ; j < len(needle); j++ {
			if hay[i+j] != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}

// fuzzy slides a value-sized window across each page at word starts and
// accepts the first window within the drift budget. Earliest page, then
// leftmost window, wins ties, keeping the result stable across runs.
func fuzzy(needle string, idx *pageindex.Index) *Span {
	nr := []rune(strings.ToLower(needle))
	budget := int(float64(len(nr)) * DriftRatio)
	if budget < 1 {
		budget = 1
	}

	for _, p := range idx.Pages() {
		hay := []rune(p.Norm)
		lowerHay := []rune(strings.ToLower(p.Norm))
		if len(hay) < len(nr)/2 {
			continue
		}

		bestDist := budget + 1
		bestStart, bestEnd := -1, -1

		for _, start := range wordStarts(hay) {
			end := start + len(nr)
			if end > len(hay) {
				end = len(hay)
			}
			if end-start < len(nr)-budget {
				break // Remaining windows are too short
			}
			d := levenshtein.Distance(string(nr), string(lowerHay[start:end]), nil)
			if d < bestDist {
				bestDist = d
				bestStart, bestEnd = start, end
				if d == 0 {
					break
				}
			}
		}

		if bestStart >= 0 {
			return &Span{Page: p.Number, Text: string(hay[bestStart:bestEnd])}
		}
	}

	return nil
}

// wordStarts returns the rune offsets where words begin
func wordStarts(runes []rune) []int {
	var starts []int
	inWord := false
	for i, r := range runes {
		if r == ' ' {
			inWord = false
			continue
		}
		if !inWord {
			starts = append(starts, i)
			inWord = true
		}
	}
	return starts
}
