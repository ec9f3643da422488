package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argmap/internal/model"
)

var (
	outJSON     string
	outMD       string
	evalTimeout time.Duration
	noCache     bool
	noFooter    bool
	strict      bool
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <graph-file>",
	Short: "Evaluate an argument map and report claim costs",
	Long: `Eval loads a graph file (YAML or JSON) and:
- Propagates costs through AND/OR implications
- Validates the graph's structure and reports cycles
- Writes JSON and Markdown reports and prints a summary

Example:
  argmap eval argument.yaml
  argmap eval argument.yaml --json report.json --md report.md
  argmap eval argument.json --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	evalCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", time.Minute, "evaluation timeout")
	evalCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	evalCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	evalCmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when validation finds errors")
}

func runEval(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	cfg, log, p, err := setup(func(cfg *model.Config) {
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

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Evaluating: %s\n", path)
		fmt.Fprintf(os.Stderr, "Base cost mode: %s\n", cfg.Engine.BaseCostMode)
		fmt.Fprintf(os.Stderr, "Cache: %v\n\n", cfg.Cache.Enabled)
	}

	report, err := p.EvaluateFile(ctx, path)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return err
	}

	if strict && !report.Validation.Valid() {
		return fmt.Errorf("%d validation error(s) in %s", len(report.Validation.Errors), path)
	}
	return nil
}
