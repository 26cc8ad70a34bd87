package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"fraudguard/internal/alert"
	"fraudguard/internal/api"
	"fraudguard/internal/cfg"
	"fraudguard/internal/metrics"
	"fraudguard/internal/model"
	"fraudguard/internal/realtime"
	"fraudguard/internal/scoring"
	"fraudguard/internal/storage"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	// A missing or corrupt artifact set is not fatal: the service starts in
	// degraded mode and predict endpoints answer 503 until artifacts appear
	// and the process is restarted.
	artifacts, err := model.Load(c.ModelDir)
	if err != nil {
		log.Warn().Err(err).Str("model_dir", c.ModelDir).
			Msg("model artifacts unavailable, starting in degraded mode")
		artifacts = nil
	}

	svc := scoring.New(artifacts, mw,
		scoring.WithAmountSoftCeiling(c.AmountSoftCeiling),
		scoring.WithBatchLimit(c.BatchLimit),
	)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	hub := realtime.NewHub(mw)
	go hub.Run(ctx)

	notifier := alert.New(c.AlertWebhookURL, c.AlertTimeout, mw)

	server := api.New(c, svc, store, notifier, hub, mw)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	waitForShutdown(ctx, cancel, server, c, serverErr)
}

// initializeStorage opens the prediction history store if DATA_PATH is
// configured. History is best effort: a failure logs and disables it.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without prediction history")
		return nil
	}
	return store
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server, c cfg.Settings, serverErr chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	} else {
		log.Info().Msg("server stopped")
	}
}
