// Package main is the entry point of the mediaplay sync server.
//
// main only reads configuration, builds the logger and hands both to
// internal/server. Everything else lives in internal/.
//
// Usage:
//
//	JWT_SECRET=... mediaplay-server -config config.toml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/mediaplay-sync/internal/config"
	"github.com/sakif/mediaplay-sync/internal/logging"
	"github.com/sakif/mediaplay-sync/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mediaplay-server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("MEDIAPLAY_CONFIG"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// SQLite does not create missing parent directories.
	if path := cfg.Database.SQLitePath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	ctx := context.Background()
	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	return srv.Start(ctx)
}
