package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/petcare-portal/internal/app/api"
	platformobservability "github.com/Apurer/petcare-portal/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger := platformobservability.NewLogger(nil, cfg.LogLevel)

	storage, cleanup := api.BuildCartStorage(ctx, cfg, logger)
	defer cleanup()
	if storage.Purger == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idle carts")
	}

	cutoff := time.Now().Add(-cfg.CartIdleTTL)
	purged, err := storage.Purger.PurgeIdle(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge idle carts: %v", err)
	}
	logger.Info("idle cart purge completed", slog.Int64("purged", purged), slog.Time("cutoff", cutoff))
}
