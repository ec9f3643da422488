package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argmap/internal/watch"
	"github.com/ppiankov/argmap/internal/worker"
)

var watchDebounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <paths>...",
	Short: "Re-evaluate argument maps whenever they change",
	Long: `Watch evaluates the given graph files (or every graph file in the given
directories) once, then again after each save. Rapid saves are debounced and
re-evaluations are rate-limited per file (watch.max_per_second).

Example:
  argmap watch argument.yaml
  argmap watch maps/ --debounce 500ms`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-evaluating (default: watch.debounce)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, p, err := setup(nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	paths, err := worker.ExpandPaths(args)
	if err != nil {
		return err
	}

	opts := watch.OptionsFromConfig(cfg.Watch)
	opts.Initial = true
	if watchDebounce > 0 {
		opts.Debounce = watchDebounce
	}

	renderer := p.Renderer()
	handler := func(ev watch.Event) {
		stamp := ev.Time.Format("15:04:05")
		if ev.Err != nil {
			fmt.Fprintf(os.Stderr, "[%s] ✗ %s: %v\n", stamp, ev.Path, ev.Err)
			return
		}
		s := ev.Report.Summary
		fmt.Fprintf(os.Stderr, "[%s] ✓ %s: %d claims, %d unsupported, %d errors, %d warnings\n",
			stamp, ev.Path, s.Claims, s.Unsupported, s.Errors, s.Warnings)
		if cfg.Output.Verbose {
			renderer.RenderSummary(ev.Report)
		}
	}

	w, err := watch.New(paths, p, handler, opts, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watching %d file(s). Press Ctrl+C to stop.\n", len(w.Files()))
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
