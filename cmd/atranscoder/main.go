// Command atranscoder runs the audio-transcoding service: it loads
// configuration from the environment, starts the worker pool and staging
// sweeper, and serves the HTTP intake/retrieval surface until signalled to
// stop.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Neur0toxine/atranscoder-rpc/internal/callback"
	"github.com/Neur0toxine/atranscoder-rpc/internal/config"
	"github.com/Neur0toxine/atranscoder-rpc/internal/httpapi"
	"github.com/Neur0toxine/atranscoder-rpc/internal/jobdriver"
	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
	"github.com/Neur0toxine/atranscoder-rpc/internal/sweeper"
	"github.com/Neur0toxine/atranscoder-rpc/internal/workerpool"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logging.Configure(logging.Config{Level: "info", Service: "atranscoder"})
	logger := logging.WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Str(logging.FieldEvent, "config.load_failed").Msg("failed to load configuration")
	}

	logging.Configure(logging.Config{Level: cfg.LogLevel, Service: "atranscoder"})
	logger = logging.WithComponent("main")
	logger.Info().
		Str("listen", cfg.Listen).
		Int("num_workers", cfg.NumWorkers).
		Str(logging.FieldPath, cfg.TempDir).
		Msg("starting atranscoder")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver := jobdriver.New(callback.New())
	pool := workerpool.New(cfg.NumWorkers, driver)
	defer pool.Shutdown()

	sw := &sweeper.Sweeper{
		WorkDir:  cfg.TempDir,
		TTL:      cfg.ResultTTL,
		Interval: cfg.ResultTTL / 4,
	}
	go sw.Run(ctx)

	server := httpapi.New(cfg, pool)
	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: server,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str(logging.FieldEvent, "http.listening").Str("addr", cfg.Listen).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Str(logging.FieldEvent, "http.failed").Msg("http server stopped unexpectedly")
	case <-ctx.Done():
		logger.Info().Str(logging.FieldEvent, "shutdown.start").Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	logger.Info().Str(logging.FieldEvent, "shutdown.complete").Msg("atranscoder stopped")
}
