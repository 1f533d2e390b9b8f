// Package main is the entry point for the project-studio API server.
//
// main stays minimal. It:
//  1. Loads configuration (.env file + environment, see internal/config)
//  2. Builds the logger
//  3. Creates the data directory and the server
//  4. Blocks in Start until SIGINT/SIGTERM
//
// All actual logic lives in internal/.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/project-studio/internal/config"
	sqliteRepo "github.com/sakif/project-studio/internal/repository/sqlite"
	"github.com/sakif/project-studio/internal/server"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	// === 1. CONFIGURATION ===
	cfg, err := config.Load(*envFile)
	if err != nil {
		// No configured logger yet; fall back to a plain one.
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger, err := cfg.Log.NewLogger(os.Stdout)
	if err != nil {
		slog.Error("invalid log configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// === 3. DATA DIRECTORY ===
	// os.MkdirAll works like `mkdir -p`.
	if cfg.DB.Path != sqliteRepo.MemoryPath {
		dbDir := filepath.Dir(cfg.DB.Path)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
