package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mathmentor/mentor/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the mentor HTTP server: JSON endpoints for solving and
feedback, a WebSocket progress stream, the case memory API and the
usage ledger.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}

	bank, err := openBank(cfg)
	if err != nil {
		return err
	}
	meter := openMeter(cfg)
	ix, err := loadIndex(ctx, cfg)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg, ix, bank, meter, nil)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:     port,
		AllowAll: cfg.Server.AllowAllOrigins,
	}, orch, bank, meter)

	// Graceful shutdown.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		srv.Shutdown(context.Background())
	}()

	fmt.Fprintf(os.Stderr, "mentor server v%s starting on port %d\n", Version, port)
	fmt.Fprintf(os.Stderr, "  Cases:     %s (%d recorded)\n", bank.Path(), bank.Len())
	fmt.Fprintf(os.Stderr, "  Knowledge: %d passage(s)\n", ix.Count())

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
