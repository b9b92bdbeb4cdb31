package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/seed"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, "seed")
	if cfg.InMemory() {
		logger.Fatal().Msg("DB_DSN is required; the in-memory API seeds itself")
	}

	ctx := context.Background()
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open backend")
	}
	defer b.Close()

	if err := seed.Apply(ctx, b.Users, b.Products, b.Categories, seed.Options{
		AdminEmail:    cfg.SeedAdminEmail,
		AdminPassword: cfg.SeedAdminPassword,
	}, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().Str("admin", cfg.SeedAdminEmail).Str("buyer", seed.DemoUserEmail).Msg("seed applied")
}
