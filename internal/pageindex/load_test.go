package pageindex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/provenia/provenia/internal/model"
)

func TestParseMarkedText(t *testing.T) {
	text := "--- PAGE 1 ---\nRequest for Proposal\n--- PAGE 2 ---\nScope of work.\n"

	pages, err := ParseMarkedText(text)
	if err != nil {
		t.Fatalf("ParseMarkedText: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Number != 1 || pages[0].Text != "Request for Proposal" {
		t.Errorf("page 1 = %+v", pages[0])
	}
	if pages[1].Number != 2 || pages[1].Text != "Scope of work." {
		t.Errorf("page 2 = %+v", pages[1])
	}
}

func TestParseMarkedTextNoMarkers(t *testing.T) {
	pages, err := ParseMarkedText("a single unmarked document")
	if err != nil {
		t.Fatalf("ParseMarkedText: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("unmarked text should become page 1, got %+v", pages)
	}
}

func TestParseMarkedTextEmpty(t *testing.T) {
	_, err := ParseMarkedText("   \n ")
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("err = %v, want ErrMalformedDocument", err)
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	content := `{"pages": [{"page": 1, "text": "hello"}, {"page": 2, "text": "world"}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	pages, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(pages) != 2 || pages[1].Text != "world" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestLoadFileJSONBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`[{"page": 3, "text": "addendum"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	pages, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 3 {
		t.Errorf("pages = %+v", pages)
	}
}

func TestLoadFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("--- PAGE 1 ---\nbody"), 0644); err != nil {
		t.Fatal(err)
	}

	pages, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(pages) != 1 || pages[0].Text != "body" {
		t.Errorf("pages = %+v", pages)
	}
}
