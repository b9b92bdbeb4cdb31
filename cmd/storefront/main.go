package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"storefront/internal/client/api"
	"storefront/internal/client/guard"
	"storefront/internal/client/session"
	"storefront/internal/client/storefront"
	"storefront/internal/config"
	"storefront/internal/logging"
)

func main() {
	banner := flag.Bool("banner", false, "Print the banner before running the command")
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *banner {
		figure.NewFigure("storefront", "cybermedium", true).Print()
		fmt.Println()
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.Log, "storefront")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.SessionBackend).Msg("open session storage")
	}
	defer storage.Close()

	app, err := storefront.New(ctx, storefront.Options{
		API:     api.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout},
		Storage: storage,
		Navigator: guard.NavigatorFunc(func(path string) {
			fmt.Fprintf(os.Stderr, "Session expired. Sign in again (%s).\n", path)
		}),
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init storefront")
	}
	defer app.Close()

	if err := dispatch(ctx, app, os.Stdout, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		code := 1
		if errors.Is(err, errUsage) {
			code = 2
		}
		app.Close()
		storage.Close()
		os.Exit(code)
	}
}

func openStorage(ctx context.Context, cfg config.ClientConfig) (session.Storage, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return session.NewMemoryStorage(), nil
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return session.NewRedisStorage(client, cfg.RedisPrefix), nil
	default:
		return session.OpenSQLite(ctx, cfg.SessionPath)
	}
}
