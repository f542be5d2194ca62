package pageindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/provenia/provenia/internal/model"
)

// pageMarkerRe matches the page delimiter emitted by upstream PDF text
// extraction: a line of the form "--- PAGE 7 ---"
var pageMarkerRe = regexp.MustCompile(`(?m)^\s*---\s*PAGE\s+(\d+)\s*---\s*$`)

// LoadFile reads a document into raw pages. JSON files carry an explicit
// page array; anything else is treated as marker-delimited plain text.
func LoadFile(path string) ([]RawPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSONPages(data)
	}
	return ParseMarkedText(string(data))
}

// parseJSONPages accepts either a bare page array or an object with a
// "pages" key
func parseJSONPages(data []byte) ([]RawPage, error) {
	var pages []RawPage
	if err := json.Unmarshal(data, &pages); err == nil {
		return pages, nil
	}

	var doc struct {
		Pages []RawPage `json:"pages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedDocument, err)
	}
	return doc.Pages, nil
}

// ParseMarkedText splits marker-delimited text into raw pages. Text with no
// markers at all becomes a single page 1.
func ParseMarkedText(text string) ([]RawPage, error) {
	locs := pageMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: empty document", model.ErrMalformedDocument)
		}
		return []RawPage{{Number: 1, Text: text}}, nil
	}

	var pages []RawPage
	for i, loc := range locs {
		number, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			return nil, fmt.Errorf("%w: bad page marker", model.ErrMalformedDocument)
		}

		start := loc[1]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		pages = append(pages, RawPage{
			Number: number,
			Text:   strings.TrimSpace(text[start:end]),
		})
	}
	return pages, nil
}
