package main

import (
	"log/slog"
	"os"

	"github.com/meowv/blog/internal/config"
	"github.com/meowv/blog/internal/server"
	"github.com/meowv/blog/internal/token"
)

func main() {
	// Setup structured logger
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelInfo)
	if os.Getenv("APP_ENV") == "development" {
		logLevel.Set(slog.LevelDebug)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(lvl)); err != nil {
			slog.Error("invalid LOG_LEVEL, using default", "value", lvl, "error", err)
		} else {
			logLevel.Set(l)
		}
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDev() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Signing misconfiguration is fatal.
	issuer, err := token.NewIssuer(cfg.JWT)
	if err != nil {
		logger.Error("invalid signing configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting meowv blog server",
		"environment", cfg.App.Environment,
		"version", "0.1.0",
	)

	srv, err := server.New(cfg, issuer, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
