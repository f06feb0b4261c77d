// Command worker runs the sync processor without the HTTP API. It relies
// entirely on the poll sweep, so it can drain a queue populated by server
// instances running elsewhere.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/adapter/postgres/baseline"
	"github.com/serenvoice/backend/internal/adapter/postgres/conversation"
	"github.com/serenvoice/backend/internal/adapter/postgres/emotion"
	"github.com/serenvoice/backend/internal/adapter/postgres/preference"
	"github.com/serenvoice/backend/internal/adapter/postgres/syncqueue"
	"github.com/serenvoice/backend/internal/app"
	"github.com/serenvoice/backend/internal/config"
	syncsvc "github.com/serenvoice/backend/internal/service/sync"
	"github.com/serenvoice/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validate config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := syncsvc.NewService(
		logger,
		syncqueue.New(pool),
		conversation.New(pool),
		emotion.New(pool),
		baseline.New(pool),
		preference.New(pool),
		postgres.NewTxManager(pool),
		nil, // No local admission, so nothing to dispatch.
	)

	workerPool := worker.NewPool(logger, svc, cfg.Sync)

	logger.Info("starting standalone worker", slog.String("version", app.BuildVersion()))
	workerPool.Run(ctx)
}
