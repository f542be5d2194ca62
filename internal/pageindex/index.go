// Package pageindex turns raw per-page document text into the ordered,
// immutable page records the rest of the engine treats as ground truth.
package pageindex

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/provenia/provenia/internal/model"
)

// RawPage is one page as handed over by the upstream PDF/OCR component
type RawPage struct {
	Number int    `json:"page"`
	Text   string `json:"text"`
}

// Page is one indexed page. Raw preserves the literal source text for
// display; Norm is the whitespace-collapsed form provenance search runs
// against, so PDF line-wrap artifacts don't break substring matching.
type Page struct {
	Number int
	Raw    string
	Norm   string
}

// Index is an ordered, immutable sequence of pages
type Index struct {
	pages []Page
}

// Build validates and normalizes raw pages into an Index.
// Page numbers must be ≥1 and strictly increasing.
func Build(raw []RawPage) (*Index, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no pages", model.ErrMalformedDocument)
	}

	pages := make([]Page, 0, len(raw))
	prev := 0
	for _, rp := range raw {
		if rp.Number < 1 {
			return nil, fmt.Errorf("%w: page number %d", model.ErrMalformedDocument, rp.Number)
		}
		if rp.Number <= prev {
			return nil, fmt.Errorf("%w: page %d after page %d", model.ErrMalformedDocument, rp.Number, prev)
		}
		prev = rp.Number

		pages = append(pages, Page{
			Number: rp.Number,
			Raw:    rp.Text,
			Norm:   Normalize(rp.Text),
		})
	}

	return &Index{pages: pages}, nil
}

// Pages returns the pages in document order. The returned slice is a copy;
// the index itself never changes after Build.
func (idx *Index) Pages() []Page {
	out := make([]Page, len(idx.pages))
	copy(out, idx.pages)
	return out
}

// Len returns the page count
func (idx *Index) Len() int {
	return len(idx.pages)
}

// Page returns the page with the given number, if present
func (idx *Index) Page(number int) (Page, bool) {
	for _, p := range idx.pages {
		if p.Number == number {
			return p, true
		}
	}
	return Page{}, false
}

// Normalize collapses runs of whitespace to single spaces and repairs
// hyphenated line breaks ("recon-\nstruction" → "reconstruction").
// Matching runs on this form; display always uses the raw text.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Join words split across lines by a trailing hyphen. Only rejoin when
	// both sides are letters, so real hyphenated compounds at line ends
	// ("design-\nbuild" still reads "designbuild"; acceptable for matching)
	// and numeric ranges survive untouched.
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '-' && i > 0 && unicode.IsLetter(runes[i-1]) {
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && runes[j] == '\n' {
				j++
				for j < len(runes) && unicode.IsSpace(runes[j]) {
					j++
				}
				if j < len(runes) && unicode.IsLetter(runes[j]) {
					i = j - 1 // Drop the hyphen and the break
					continue
				}
			}
		}
		b.WriteRune(r)
	}

	// Collapse all whitespace runs to single spaces
	fields := strings.Fields(b.String())
	return strings.Join(fields, " ")
}
