package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argmap/internal/server"
)

var (
	serveAddr    string
	servePersist bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <graph-file>",
	Short: "Serve an argument map over an editing HTTP API",
	Long: `Serve loads a graph file and exposes it over a JSON API:
claims and implications can be added, updated and deleted, costs and
validation are recomputed on every read, and cleanup can be triggered.

With --persist every successful edit is written back to the file.

Example:
  argmap serve argument.yaml
  argmap serve argument.yaml --addr :9090 --persist`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&servePersist, "persist", false, "write the graph back to the file after each edit")
}

func runServe(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, p, err := setup(nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := p.LoadFile(path)
	if err != nil {
		return err
	}

	opts := server.Options{Mode: cfg.Server.Mode}
	if servePersist || cfg.Server.Persist {
		opts.PersistPath = path
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	fmt.Fprintf(os.Stderr, "Serving %s on %s (persist: %v)\n", path, addr, opts.PersistPath != "")
	return server.New(store, p, opts, log).Run(ctx, addr)
}
