package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "Roll back every migration instead of applying them")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, "migrate")
	if cfg.InMemory() {
		logger.Fatal().Msg("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("roll back migrations")
		}
		logger.Info().Msg("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}
	logger.Info().Msg("migrations applied")
}
