package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/provenia/provenia/internal/engine"
	"github.com/provenia/provenia/internal/pageindex"
)

var (
	extractOut      string
	extractSchema   string
	extractTimeout  time.Duration
	extractProvider string
	extractModel    string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract evidence-linked fields from a document",
	Long: `Extract runs the full pipeline over one document:
- Index pages and repair PDF text artifacts
- Pull schema fields out with an LLM, one call per document window
- Verify every claimed source quote against the actual pages
- Score confidence from how the value was located
- Flag numerical, timeline, and scope contradictions

The document is either a JSON page array ({"pages": [{"page": 1, "text":
"..."}]}) or plain text with "--- PAGE N ---" markers.

Example:
  provenia extract rfp.json
  provenia extract rfp.txt --schema fields.yaml --json result.json
  provenia extract rfp.json --provider ollama --model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractOut, "json", "-", "output JSON path (- for stdout)")
	extractCmd.Flags().StringVar(&extractSchema, "schema", "", "field schema YAML (default: built-in RFP schema)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 10*time.Minute, "overall extraction timeout")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "LLM model name")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Output.Verbose = verbose
	if err := applyLLMFlags(&cfg, extractProvider, extractModel); err != nil {
		return err
	}

	schema, err := loadSchema(extractSchema)
	if err != nil {
		return err
	}

	pages, err := pageindex.LoadFile(path)
	if err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("initialize provider: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s (%d pages, %d fields)\n", path, len(pages), len(schema))
	}

	result, err := engine.New(provider, cfg).Process(ctx, pages, schema)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if verbose {
		printRunSummary(result)
	}
	return writeJSON(extractOut, result)
}

// printRunSummary reports the shape of one extraction run on stderr
func printRunSummary(result *engine.Result) {
	var located, unlocated, missing int
	for _, f := range result.Fields {
		switch {
		case f.HasProvenance():
			located++
		case f.Value != nil:
			unlocated++
		default:
			missing++
		}
	}
	fmt.Fprintf(os.Stderr, "✓ %d fields located, %d unlocated, %d missing\n", located, unlocated, missing)
	fmt.Fprintf(os.Stderr, "✓ %d contradiction(s) flagged\n", len(result.Contradictions))
	for _, c := range result.Contradictions {
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", c.Type, c.Description)
	}
	if len(result.WindowErrors) > 0 {
		fmt.Fprintf(os.Stderr, "! %d window call(s) failed\n", len(result.WindowErrors))
	}
}
