package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fedit/internal/config"
	"fedit/internal/database"
	"fedit/internal/engine"
	"fedit/internal/handlers"
	"fedit/internal/logging"
	"fedit/internal/seed"
	"fedit/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// buildServer opens storage, seeds it and starts the actor engine.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, kv database.KeyValue) (*handlers.Server, *engine.Engine, error) {
	keys := database.NewKeys(cfg.Storage.Prefix)
	if _, err := seed.Bootstrap(ctx, kv, keys, logger); err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}

	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem(actor.WithLoggerFactory(func(*actor.ActorSystem) *slog.Logger {
		return logger.With("component", "actor")
	}))

	fedit := engine.NewEngine(system, engine.Options{
		Store:          kv,
		Keys:           keys,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := handlers.NewServer(fedit, metrics, logger)
	server.AllowedOrigins = cfg.AllowedOrigins
	server.MetricsEnabled = cfg.Server.MetricsEnabled
	return server, fedit, nil
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer kv.Close(context.Background())
	logger.Info("storage ready", "type", cfg.Storage.Type, "prefix", cfg.Storage.Prefix)

	server, fedit, err := buildServer(ctx, cfg, logger, kv)
	if err != nil {
		return err
	}
	defer fedit.Stop()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
