package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cleanupGoals []string
	cleanupWrite bool
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup <graph-file>",
	Short: "Remove claims and implications that cannot reach the goals",
	Long: `Cleanup keeps only what can contribute to the goal claims: the goals,
every implication concluding a kept claim, and that implication's premises.

Goals default to the document's goals. Without --write the file is untouched
and only the number of removable elements is printed.

Example:
  argmap cleanup argument.yaml
  argmap cleanup argument.yaml --goal root --write`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().StringSliceVar(&cleanupGoals, "goal", nil, "goal claim id (repeatable; default: document goals)")
	cleanupCmd.Flags().BoolVar(&cleanupWrite, "write", false, "save the cleaned graph back to the file")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	path := args[0]

	_, log, p, err := setup(nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	removed, err := p.Cleanup(path, cleanupGoals, cleanupWrite)
	if err != nil {
		return err
	}

	switch {
	case removed == 0:
		fmt.Printf("✓ %s: nothing to remove\n", path)
	case cleanupWrite:
		fmt.Printf("✓ %s: removed %d element(s)\n", path, removed)
	default:
		fmt.Printf("%s: %d element(s) unreachable from the goals (use --write to remove)\n", path, removed)
	}
	return nil
}
