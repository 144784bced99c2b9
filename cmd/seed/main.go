package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/AngelCh415/perfdash/internal/config"
	"github.com/AngelCh415/perfdash/internal/store"
)

func main() {
	file := flag.String("file", "customers.yaml", "YAML file with a top-level customers list")
	flag.Parse()

	cfg := config.FromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(context.Background(), cfg, *file, logger); err != nil {
		logger.Error("seed failed", slog.String("file", *file), slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	customers, err := store.ParseSeed(f)
	if err != nil {
		return err
	}

	st, closeStore, err := store.Open(ctx, store.Options{
		Driver:        cfg.StoreDriver,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	saved, err := store.Seed(ctx, st, customers, logger)
	if err != nil {
		return err
	}
	logger.Info("seed complete", slog.Int("customers", len(saved)), slog.String("store", cfg.StoreDriver))
	return nil
}
