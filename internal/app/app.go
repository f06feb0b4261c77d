// Package app wires configuration, storage, services, workers, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/adapter/postgres/baseline"
	"github.com/serenvoice/backend/internal/adapter/postgres/conversation"
	"github.com/serenvoice/backend/internal/adapter/postgres/emotion"
	"github.com/serenvoice/backend/internal/adapter/postgres/preference"
	"github.com/serenvoice/backend/internal/adapter/postgres/syncqueue"
	"github.com/serenvoice/backend/internal/auth"
	"github.com/serenvoice/backend/internal/config"
	syncsvc "github.com/serenvoice/backend/internal/service/sync"
	"github.com/serenvoice/backend/internal/transport/middleware"
	"github.com/serenvoice/backend/internal/transport/rest"
	"github.com/serenvoice/backend/internal/worker"
)

// Run is the application entry point. It loads configuration, connects to the
// database, builds the sync service and worker pool, and serves HTTP until
// ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	queueRepo := syncqueue.New(pool)
	convRepo := conversation.New(pool)
	emotionRepo := emotion.New(pool)
	baselineRepo := baseline.New(pool)
	prefRepo := preference.New(pool)
	txManager := postgres.NewTxManager(pool)

	svc := syncsvc.NewService(logger, queueRepo, convRepo, emotionRepo, baselineRepo, prefRepo, txManager, nil)
	workerPool := worker.NewPool(logger, svc, cfg.Sync)
	svc.SetDispatcher(workerPool)

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	mux := rest.NewRouter(rest.RouterDeps{
		Sync:   rest.NewSyncHandler(svc, logger),
		Admin:  rest.NewAdminHandler(svc, logger),
		Health: rest.NewHealthHandler(pool, BuildVersion()),
	})

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtMgr),
	}
	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
		mws = append(mws, limiter.Limit(cfg.Server.RateLimitPerMinute))
	}
	handler := middleware.Chain(mws...)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		workerPool.Run(workerCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stopWorkers()
		<-workersDone
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.String("error", err.Error()))
	}

	// Stop accepting new work only after in-flight HTTP requests have
	// finished dispatching, then drain the workers.
	stopWorkers()
	<-workersDone

	logger.Info("application stopped")
	return nil
}
