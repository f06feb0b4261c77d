// Command server runs the sync backend: the admission HTTP API and the
// in-process worker pool that drains the operation queue.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/serenvoice/backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
