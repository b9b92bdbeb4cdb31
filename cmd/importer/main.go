package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a product CSV (name,description,price,stock,image,category)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, "importer")
	if cfg.InMemory() {
		logger.Fatal().Msg("DB_DSN is required")
	}

	ctx := context.Background()
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open backend")
	}
	defer b.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, b.Products, b.Categories, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("import failed")
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
