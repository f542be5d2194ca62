// Package scrape fetches procurement postings over HTTP and turns them
// into the raw pages the extraction pipeline consumes. Politeness is
// non-negotiable: robots.txt is honored, requests are rate-limited per
// host, and bodies are size-capped.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/provenia/provenia/internal/cache"
	"github.com/provenia/provenia/internal/model"
	"github.com/provenia/provenia/internal/pageindex"
	"github.com/provenia/provenia/internal/util"
	"github.com/provenia/provenia/internal/worker"
)

// ErrRobotsDisallowed is returned when the target site's robots.txt
// forbids fetching the URL
var ErrRobotsDisallowed = errors.New("fetch disallowed by robots.txt")

// Scraper fetches one posting URL into raw document pages
type Scraper struct {
	client  *http.Client
	robots  *util.RobotsChecker
	limiter *worker.Limiter
	store   cache.Cache
	cfg     model.ScrapeConfig
}

// NewScraper creates a scraper. store may be nil to disable body caching.
func NewScraper(cfg model.ScrapeConfig, store cache.Cache) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:  util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter: worker.NewLimiter(cfg.RatePerSecond, 1),
		store:   store,
		cfg:     cfg,
	}
}

// FetchPages retrieves the URL and returns its content as raw pages.
// HTML bodies become a single page of visible text; plain text bodies go
// through page-marker parsing, so pre-extracted documents served over
// HTTP keep their pagination.
func (s *Scraper) FetchPages(ctx context.Context, rawURL string) ([]pageindex.RawPage, error) {
	body, contentType, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if strings.Contains(contentType, "text/html") || looksLikeHTML(body) {
		text, err := VisibleText(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedDocument, err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: no visible text at %s", model.ErrMalformedDocument, rawURL)
		}
		return []pageindex.RawPage{{Number: 1, Text: text}}, nil
	}

	return pageindex.ParseMarkedText(body)
}

// fetch returns the response body and content type, consulting robots.txt,
// the per-host limiter, and the body cache in that order
func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, string, error) {
	var crawlDelay time.Duration
	if s.cfg.RespectRobots {
		allowed, delay, err := s.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", "", err
		}
		if !allowed {
			return "", "", fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}
		crawlDelay = delay
	}

	if s.store != nil {
		if cached, found := s.store.Get(cache.FetchKey(rawURL)); found {
			return string(cached), "", nil
		}
	}

	if err := s.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	if s.store != nil {
		_ = s.store.Set(cache.FetchKey(rawURL), body, 0)
	}

	return string(body), resp.Header.Get("Content-Type"), nil
}

func looksLikeHTML(body string) bool {
	head := strings.ToLower(body)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
