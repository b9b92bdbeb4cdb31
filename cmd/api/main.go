package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/seed"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, "api")

	ctx := context.Background()
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open backend")
	}
	defer b.Close()

	// An in-memory backend starts empty; give it the demo catalog and accounts.
	if b.Pool == nil {
		if err := seed.Apply(ctx, b.Users, b.Products, b.Categories, seed.Options{
			AdminEmail:    cfg.SeedAdminEmail,
			AdminPassword: cfg.SeedAdminPassword,
		}, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed in-memory store")
		}
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, b.Deps(), httpserver.Options{
		BasePath:       cfg.BasePath,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
