package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/provenia/provenia/internal/engine"
	"github.com/provenia/provenia/internal/llm"
	"github.com/provenia/provenia/internal/model"
	"github.com/provenia/provenia/internal/pageindex"
	"github.com/provenia/provenia/internal/worker"
)

var (
	batchOutputDir string
	batchSchema    string
	batchWorkers   int
	batchTimeout   time.Duration
	batchProvider  string
	batchModel     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Extract multiple documents from a manifest in parallel",
	Long: `Batch runs the extraction pipeline over many documents:
- Read document paths from the manifest (one per line, # for comments)
- Extract documents in parallel with a bounded worker count
- Windows within one document still run sequentially
- Write one JSON result per document into the output directory

Example:
  provenia batch documents.txt
  provenia batch documents.txt --workers 8 --output-dir ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./provenia-results", "output directory for result JSON files")
	batchCmd.Flags().StringVar(&batchSchema, "schema", "", "field schema YAML (default: built-in RFP schema)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent documents (0: config default)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 60*time.Minute, "total batch timeout")
	batchCmd.Flags().StringVar(&batchProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "LLM model name")
}

// batchRunner adapts the engine to the batch worker contract
type batchRunner struct {
	provider llm.Provider
	cfg      model.Config
	schema   model.Schema
}

func (r *batchRunner) RunDocument(ctx context.Context, path string) (*engine.Result, error) {
	pages, err := pageindex.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.New(r.provider, r.cfg).Process(ctx, pages, r.schema)
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Output.Verbose = verbose
	if batchWorkers > 0 {
		cfg.Concurrency.BatchWorkers = batchWorkers
	}
	if err := applyLLMFlags(&cfg, batchProvider, batchModel); err != nil {
		return err
	}

	schema, err := loadSchema(batchSchema)
	if err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("initialize provider: %w", err)
	}

	if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runner := &batchRunner{provider: provider, cfg: cfg, schema: schema}
	processor := worker.NewBatchProcessor(runner, cfg.Concurrency.BatchWorkers)

	fmt.Fprintf(os.Stderr, "⚙️  Processing %s with %d workers...\n", manifest, cfg.Concurrency.BatchWorkers)
	results, err := processor.ProcessManifest(ctx, manifest)
	if err != nil {
		return err
	}

	var succeeded, failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}
		succeeded++

		outPath := filepath.Join(batchOutputDir, resultFilename(r.Path))
		if err := writeJSON(outPath, r.Result); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d contradiction(s))\n", r.Path, len(r.Result.Contradictions))
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d succeeded, %d failed, output in %s\n",
		succeeded, failed, batchOutputDir)
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed", failed)
	}
	return nil
}

// resultFilename derives the output name from the document path
func resultFilename(docPath string) string {
	base := filepath.Base(docPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".result.json"
}
