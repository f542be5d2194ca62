package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/provenia/provenia/internal/cache"
	"github.com/provenia/provenia/internal/model"
)

func scrapeConfig() model.ScrapeConfig {
	return model.ScrapeConfig{
		Timeout:       5 * time.Second,
		UserAgent:     "Provenia/0.1 (+https://github.com/provenia/provenia)",
		MaxBodyBytes:  1 << 20,
		RespectRobots: true,
		RatePerSecond: 100,
	}
}

func TestVisibleText(t *testing.T) {
	html := `<html><head><title>x</title><style>body{}</style></head>
	<body><h1>RFP 2025-17</h1><script>alert(1)</script>
	<p>Proposals are due March 15, 2025.</p></body></html>`

	text, err := VisibleText(html)
	if err != nil {
		t.Fatalf("VisibleText: %v", err)
	}
	if !strings.Contains(text, "RFP 2025-17") {
		t.Errorf("heading missing from %q", text)
	}
	if !strings.Contains(text, "Proposals are due March 15, 2025.") {
		t.Errorf("paragraph missing from %q", text)
	}
	if strings.Contains(text, "alert") || strings.Contains(text, "body{}") {
		t.Errorf("script/style leaked into %q", text)
	}
}

func TestFetchPagesHTML(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/rfp/17", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>Town of Halton Hills invites proposals.</p></body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewScraper(scrapeConfig(), nil)
	pages, err := s.FetchPages(context.Background(), srv.URL+"/rfp/17")
	if err != nil {
		t.Fatalf("FetchPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("pages = %+v, want single page 1", pages)
	}
	if !strings.Contains(pages[0].Text, "Town of Halton Hills") {
		t.Errorf("page text = %q", pages[0].Text)
	}
}

func TestFetchPagesMarkedPlainText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/doc.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "--- PAGE 1 ---\nfirst\n--- PAGE 2 ---\nsecond")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewScraper(scrapeConfig(), nil)
	pages, err := s.FetchPages(context.Background(), srv.URL+"/doc.txt")
	if err != nil {
		t.Fatalf("FetchPages: %v", err)
	}
	if len(pages) != 2 || pages[1].Text != "second" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestFetchPagesRobotsDisallowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewScraper(scrapeConfig(), nil)
	_, err := s.FetchPages(context.Background(), srv.URL+"/rfp/17")
	if !errors.Is(err, ErrRobotsDisallowed) {
		t.Fatalf("err = %v, want ErrRobotsDisallowed", err)
	}
}

func TestFetchPagesUsesCache(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/rfp/17", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>cached body</p></body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewScraper(scrapeConfig(), cache.NewMemoryCache(time.Minute, time.Minute))
	for i := 0; i < 2; i++ {
		if _, err := s.FetchPages(context.Background(), srv.URL+"/rfp/17"); err != nil {
			t.Fatalf("FetchPages run %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("origin hit %d times, want 1", hits)
	}
}

func TestFetchPagesBadStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewScraper(scrapeConfig(), nil)
	if _, err := s.FetchPages(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404 body")
	}
}

func TestFetchPagesEmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><script>only();</script></body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewScraper(scrapeConfig(), nil)
	_, err := s.FetchPages(context.Background(), srv.URL+"/empty")
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("err = %v, want ErrMalformedDocument", err)
	}
}
