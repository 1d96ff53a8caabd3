package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/internal/cli"
	httpAdapter "github.com/aretw0/slotfill/pkg/adapters/http"
	"github.com/aretw0/slotfill/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the templates directory over a JSON API. Sessions are kept in redis when
SLOTFILL_REDIS_ADDR is set, in memory otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}

func runServe() error {
	templates, err := cli.OpenTemplates(cfg.TemplatesDir)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics("slotfill")
	eng, err := cli.NewEngine(cfg, logger, metrics)
	if err != nil {
		return err
	}

	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(metrics),
		httpAdapter.WithSessions(cli.NewSessions(cfg, logger)),
		httpAdapter.WithMaxInputSize(cfg.MaxInputSize),
		httpAdapter.WithVersion(strings.TrimSpace(slotfill.Version)),
	}
	if d := cli.NewDispatcher(cfg, logger); d != nil {
		opts = append(opts, httpAdapter.WithEnrichment(d, eng.Composite()))
	}
	server := httpAdapter.NewServer(eng, templates, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting slotfill server", "address", srv.Addr, "templates", cfg.TemplatesDir)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
	server.Wait()
	logger.Info("slotfill server stopped")
	return nil
}
