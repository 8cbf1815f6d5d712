package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/matchdex/internal/transport/chi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ops server and the periodic curation worker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := newEngine(ctx, envName)
	if err != nil {
		return err
	}
	defer e.Close()
	logger := e.logger

	// Warm the index from stored embeddings so search works before the first pass.
	if err := e.semantic.RebuildFromStore(ctx); err != nil {
		logger.Warn("initial index build failed", zap.Error(err))
	}

	server := chiTransport.NewServer(e.health, e.passes, e.slates, e.semantic, e.cfg.Index.DefaultK, logger).
		WithUsage(e.usage).
		WithMessages(e.clients)

	addr := fmt.Sprintf(":%d", e.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(e.cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(e.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(e.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		runWorker(ctx, e, e.cfg.Worker.Interval())
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		logger.Error("HTTP server error", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(e.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	<-workerDone

	logger.Info("Server stopped gracefully")
	return nil
}

// runWorker runs a cycle immediately and then every interval until ctx ends.
func runWorker(ctx context.Context, e *engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := e.cycle(ctx)
		if err != nil && ctx.Err() == nil {
			e.logger.Error("curation cycle failed", zap.String("pass_id", report.ID), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
