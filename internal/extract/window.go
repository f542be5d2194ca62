package extract

import (
	"fmt"
	"strings"

	"github.com/provenia/provenia/internal/pageindex"
)

// Window is one model-context-sized slice of the document. Pages are never
// split: an oversized page becomes a window of its own.
type Window struct {
	Text  string // Page texts joined with --- PAGE N --- markers
	Pages []int  // Page numbers included, in order
}

// pageMarker labels each page inside a window so the model can report
// source pages. The format matches what the prompts describe.
func pageMarker(n int) string {
	return fmt.Sprintf("--- PAGE %d ---", n)
}

// BuildWindows partitions the index into windows of at most budget runes of
// page text. Deterministic: same index and budget always yield the same
// windows.
func BuildWindows(idx *pageindex.Index, budget int) []Window {
	if budget <= 0 {
		budget = 24000
	}

	var windows []Window
	var b strings.Builder
	var pages []int
	used := 0

	flush := func() {
		if len(pages) == 0 {
			return
		}
		windows = append(windows, Window{Text: b.String(), Pages: pages})
		b = strings.Builder{}
		pages = nil
		used = 0
	}

	for _, p := range idx.Pages() {
		n := len([]rune(p.Raw))
		if used > 0 && used+n > budget {
			flush()
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageMarker(p.Number))
		b.WriteString("\n")
		b.WriteString(p.Raw)
		pages = append(pages, p.Number)
		used += n

		if used >= budget {
			flush()
		}
	}
	flush()

	return windows
}
