package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/provenia/provenia/internal/engine"
)

// DocumentRunner runs the full extraction pipeline over one document file
type DocumentRunner interface {
	RunDocument(ctx context.Context, path string) (*engine.Result, error)
}

// ExtractJob extracts one document
type ExtractJob struct {
	Path   string
	Runner DocumentRunner
}

// Execute runs the extraction and wraps the outcome
func (j *ExtractJob) Execute(ctx context.Context) Result {
	result, err := j.Runner.RunDocument(ctx, j.Path)
	return &ExtractResult{Path: j.Path, Result: result, Error: err}
}

// ExtractResult is the outcome of one batch document
type ExtractResult struct {
	Path   string
	Result *engine.Result
	Error  error
}

// GetError returns the extraction error, if any
func (r *ExtractResult) GetError() error { return r.Error }

// BatchProcessor extracts many documents with bounded concurrency. Each
// document still runs its own windows sequentially; only documents run in
// parallel.
type BatchProcessor struct {
	runner      DocumentRunner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner DocumentRunner, concurrency int) *BatchProcessor {
	return &BatchProcessor{runner: runner, concurrency: concurrency}
}

// ProcessPaths extracts every document path concurrently and returns the
// per-document outcomes
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ExtractResult {
	if len(paths) == 0 {
		return []*ExtractResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	for _, path := range paths {
		pool.Submit(&ExtractJob{Path: path, Runner: b.runner})
	}

	results := pool.Wait()
	out := make([]*ExtractResult, len(results))
	for i, r := range results {
		out[i] = r.(*ExtractResult)
	}
	return out
}

// ProcessManifest reads a manifest of document paths and extracts them all
func (b *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath string) ([]*ExtractResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a manifest, one per line.
// Blank lines and #-comments are skipped; duplicates collapse to one run.
func ReadPathsFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return paths, nil
}
