package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/designd/internal/config"
	httpapi "github.com/fyrsmithlabs/designd/internal/http"
	"github.com/fyrsmithlabs/designd/internal/logging"
	"github.com/fyrsmithlabs/designd/internal/memory"
	"github.com/fyrsmithlabs/designd/internal/session"
)

var serveRateLimit float64

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Float64Var(&serveRateLimit, "rate-limit", 20, "Requests per second per client (0 disables)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the designd HTTP server",
	Long: `Start the designd daemon serving the session controller and memory
store over HTTP for the agent orchestrator.

The memory document must already exist; run 'designd init' first.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting designd",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("memory_backend", cfg.Memory.Backend),
		zap.String("memory_path", cfg.Memory.Path))

	backend, closeBackend, err := openBackend(cfg.Memory)
	if err != nil {
		return err
	}
	defer closeBackend()

	store, err := memory.NewStore(backend, logger.Named("memory"))
	if err != nil {
		return err
	}

	// Fail fast on a missing or corrupt document. Silent fabrication of an
	// empty memory is never acceptable.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doc, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("memory document unavailable (run 'designd init' for a new deployment): %w", err)
	}
	logger.Info("memory document loaded",
		zap.String("schema", doc.Meta.Version),
		zap.Int("principles", len(doc.Principles)),
		zap.Float64("acceptance_rate", doc.Meta.AcceptanceRate))

	controller := session.NewController(logger.Named("session"))

	server, err := httpapi.NewServer(controller, store, logger.Named("http"), &httpapi.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		RateLimit: rate.Limit(serveRateLimit),
	})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
