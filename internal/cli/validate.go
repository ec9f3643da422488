package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <graph-file>...",
	Short: "Check argument maps for structural problems",
	Long: `Validate reports dangling references, empty or duplicate premises,
self-loops (errors) and cyclic reasoning (warnings). It never changes the files.

Exits with an error when any file has validation errors.

Example:
  argmap validate argument.yaml
  argmap validate maps/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, log, p, err := setup(nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	failed := 0
	for _, path := range args {
		store, err := p.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			continue
		}

		report := p.Validator().Validate(store.Snapshot())
		for _, is := range report.Errors {
			fmt.Printf("%s: error [%s] %s\n", path, is.Kind, is.Message)
		}
		for _, is := range report.Warnings {
			fmt.Printf("%s: warning [%s] %s\n", path, is.Kind, is.Message)
		}

		if !report.Valid() {
			failed++
			continue
		}
		fmt.Printf("✓ %s (%d warning(s))\n", path, len(report.Warnings))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}
