package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/provenia/provenia/internal/cache"
	"github.com/provenia/provenia/internal/engine"
	"github.com/provenia/provenia/internal/scrape"
)

var (
	scanOut       string
	scanSchema    string
	scanTimeout   time.Duration
	scanProvider  string
	scanModel     string
	scanUserAgent string
	scanMaxBytes  int64
	scanNoCache   bool
	scanNoRobots  bool
)

// quickscanCmd represents the quickscan command
var quickscanCmd = &cobra.Command{
	Use:   "quickscan <url>",
	Short: "Fetch a posting URL and extract evidence-linked fields from it",
	Long: `Quickscan fetches a procurement posting over HTTP, reduces it to
readable text, and runs the extraction pipeline on the result. The fetch
honors robots.txt and is rate-limited per host.

A web page has no page boundaries, so everything extracted cites page 1;
the quoted source text is still verified against the fetched content.

Example:
  provenia quickscan https://bids.example.ca/rfp/2025-17
  provenia quickscan https://bids.example.ca/rfp/2025-17 --json scan.json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuickscan,
}

func init() {
	rootCmd.AddCommand(quickscanCmd)

	quickscanCmd.Flags().StringVar(&scanOut, "json", "-", "output JSON path (- for stdout)")
	quickscanCmd.Flags().StringVar(&scanSchema, "schema", "", "field schema YAML (default: built-in RFP schema)")
	quickscanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Minute, "overall scan timeout")
	quickscanCmd.Flags().StringVar(&scanProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	quickscanCmd.Flags().StringVar(&scanModel, "model", "", "LLM model name")
	quickscanCmd.Flags().StringVar(&scanUserAgent, "ua", "", "HTTP User-Agent override")
	quickscanCmd.Flags().Int64Var(&scanMaxBytes, "max-bytes", 0, "max response bytes to read (0: config default)")
	quickscanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "disable fetch cache (force fresh fetch)")
	quickscanCmd.Flags().BoolVar(&scanNoRobots, "no-robots", false, "skip robots.txt checks (only for sites you operate)")
}

func runQuickscan(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Output.Verbose = verbose
	if scanUserAgent != "" {
		cfg.Scrape.UserAgent = scanUserAgent
	}
	if scanMaxBytes > 0 {
		cfg.Scrape.MaxBodyBytes = scanMaxBytes
	}
	if scanNoCache {
		cfg.Cache.Enabled = false
	}
	if scanNoRobots {
		cfg.Scrape.RespectRobots = false
	}
	if err := applyLLMFlags(&cfg, scanProvider, scanModel); err != nil {
		return err
	}

	schema, err := loadSchema(scanSchema)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching: %s\n", url)
	}

	scraper := scrape.NewScraper(cfg.Scrape, cache.FromConfig(cfg.Cache))
	pages, err := scraper.FetchPages(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("initialize provider: %w", err)
	}

	result, err := engine.New(provider, cfg).Process(ctx, pages, schema)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if verbose {
		printRunSummary(result)
	}
	return writeJSON(scanOut, result)
}
