// Command requeue releases stale claims: queue rows a crashed or wedged
// worker claimed but never completed. Released rows become dispatchable again
// and the next poll sweep picks them up. Intended to be invoked by an
// external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/adapter/postgres/syncqueue"
	"github.com/serenvoice/backend/internal/app"
	"github.com/serenvoice/backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	queueRepo := syncqueue.New(pool)

	threshold := time.Now().Add(-cfg.Sync.StaleClaimTTL)

	released, err := queueRepo.ReleaseStale(ctx, threshold)
	if err != nil {
		logger.Error("release stale claims failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("release stale claims completed",
		slog.Int64("released", released),
		slog.Time("threshold", threshold),
	)
}
