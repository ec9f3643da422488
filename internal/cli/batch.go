package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argmap/internal/model"
	"github.com/ppiankov/argmap/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	listFile     string
	// noCache and noFooter are defined in eval.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Evaluate many argument maps in parallel",
	Long: `Batch evaluates graph files concurrently:
- Paths can be files or directories (every .yaml, .yml and .json inside)
- Or read paths from a list file (one per line, # comments allowed)
- Writes a JSON and Markdown report per file into the output directory

Example:
  argmap batch maps/
  argmap batch a.yaml b.json --concurrency 8 --output-dir ./reports
  argmap batch --list maps.txt --timeout 5m`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./argmap-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file listing graph paths, one per line")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if listFile == "" && len(args) == 0 {
		return fmt.Errorf("give graph paths or --list")
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, log, p, err := setup(func(cfg *model.Config) {
		if concurrency > 0 {
			cfg.Concurrency.Workers = concurrency
		}
		if noCache {
			cfg.Cache.Enabled = false
		}
		if noFooter {
			cfg.Output.IncludeFooter = false
		}
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	var paths []string
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		paths = append(paths, listed...)
	}
	expanded, err := worker.ExpandPaths(args)
	if err != nil {
		return err
	}
	paths = append(paths, expanded...)
	if len(paths) == 0 {
		return fmt.Errorf("no graph files found")
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  argmap Batch Evaluation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Files:        %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results := processor.ProcessFiles(ctx, paths)

	renderer := p.Renderer()
	successCount, failureCount := 0, 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		slug := uniqueSlug(used, sanitizeFilename(result.Path))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		successCount++
		s := result.Report.Summary
		fmt.Fprintf(os.Stderr, "✓ %s (%d claims, %d errors, %d warnings, %v)\n",
			result.Path, s.Claims, s.Errors, s.Warnings, result.Elapsed.Round(time.Millisecond))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d files\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	if stats, ok := p.CacheStats(); ok {
		fmt.Fprintf(os.Stderr, "  Cache:     %d hit(s), %d miss(es)\n", stats.Hits, stats.Misses)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failureCount, len(results))
	}
	return nil
}

// sanitizeFilename turns a graph path into a report file name without extension
func sanitizeFilename(path string) string {
	s := filepath.Base(path)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	s = strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	).Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "report"
	}
	return s
}

// uniqueSlug appends -2, -3, ... when two inputs share a base name
func uniqueSlug(used map[string]int, slug string) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
