package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/productpraat/catalog-importer/internal/app"
	"github.com/productpraat/catalog-importer/internal/config"
	"github.com/productpraat/catalog-importer/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "importer failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("importer starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	imp, err := app.NewImporter(ctx, cfg)
	if err != nil {
		logger.ErrorObj("failed to initialize importer", "error", err)
		return err
	}

	result, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("importer run: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("import finished with %d failed categories", result.TotalFailed)
	}
	return nil
}
