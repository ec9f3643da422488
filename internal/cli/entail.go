package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argmap/internal/llm"
	"github.com/ppiankov/argmap/internal/pipeline"
)

var (
	entailProvider string
	entailModel    string
	entailIDs      []string
	entailWrite    bool
	entailWorkers  int
	entailTimeout  time.Duration
)

// entailCmd represents the entail command
var entailCmd = &cobra.Command{
	Use:   "entail <graph-file>",
	Short: "Ask an LLM whether implications are logically valid",
	Long: `Entail sends each implication (premises and conclusion text) to an LLM
and records its verdict: entailed, not_entailed or uncertain. Verdicts are
annotations; they never change costs.

Example:
  argmap entail argument.yaml --provider openai
  argmap entail argument.yaml --provider ollama --model llama3.1:8b --ids i1,i2
  argmap entail argument.yaml --provider anthropic --write`,
	Args: cobra.ExactArgs(1),
	RunE: runEntail,
}

func init() {
	rootCmd.AddCommand(entailCmd)

	entailCmd.Flags().StringVar(&entailProvider, "provider", "", "LLM provider: openai, anthropic, ollama (default: llm.provider)")
	entailCmd.Flags().StringVar(&entailModel, "model", "", "model name (default: llm.model)")
	entailCmd.Flags().StringSliceVar(&entailIDs, "ids", nil, "implication ids to check (default: all)")
	entailCmd.Flags().BoolVar(&entailWrite, "write", false, "save verdicts back to the file")
	entailCmd.Flags().IntVar(&entailWorkers, "workers", 0, "concurrent requests (default: llm.workers)")
	entailCmd.Flags().DurationVar(&entailTimeout, "timeout", 10*time.Minute, "total timeout")
}

func runEntail(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), entailTimeout)
	defer cancel()

	cfg, log, p, err := setup(nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	llmCfg := llm.ConfigFromModel(cfg.LLM)
	if entailProvider != "" {
		llmCfg.Provider = entailProvider
	}
	if entailModel != "" {
		llmCfg.Model = entailModel
	}
	if entailWorkers > 0 {
		llmCfg.Workers = entailWorkers
	}
	if err := llm.ApplyEnv(&llmCfg); err != nil {
		return err
	}

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("no LLM provider configured (use --provider or llm.provider)")
	}

	store, err := p.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Checking entailment with %s...\n", provider.Name())
	outcomes, err := llm.NewChecker(provider, llmCfg.Workers, log).CheckAll(ctx, store, entailIDs)
	if err != nil && outcomes == nil {
		return err
	}

	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("✗ %s: %v\n", o.ImplicationID, o.Err)
		case o.Result != nil:
			fmt.Printf("%-14s %s: %s\n", o.Result.Status, o.ImplicationID, o.Result.Explanation)
		}
	}

	counts := llm.Summary(outcomes)
	fmt.Fprintf(os.Stderr, "\nentailed: %d, not_entailed: %d, uncertain: %d, errors: %d\n",
		counts["entailed"], counts["not_entailed"], counts["uncertain"], counts["error"])

	if entailWrite {
		doc := store.Document()
		if saveErr := pipeline.SaveDocument(path, &doc); saveErr != nil {
			return saveErr
		}
		fmt.Fprintf(os.Stderr, "✓ Saved verdicts to %s\n", path)
	}
	return err
}
