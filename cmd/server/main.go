package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"climbing/logbook/internal/config"
	"climbing/logbook/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting logbook API...")

	// Load configuration using viper
	cfg, err := config.Load(os.Getenv("LOGBOOK_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ConfigureLogging(cfg.Log); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	log.Info("Configuration loaded successfully")
	if cfg.Auth.UsesDefaultSecret() {
		log.Warn("⚠️ auth.secret is not set, tokens are signed with the built-in default. Set LOGBOOK_AUTH_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Errorf("Application exited with error: %v", err)
		return
	}

	log.Info("Application finished successfully")
}
