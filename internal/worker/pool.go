// Package worker runs the sync operation processor: a pool of workers fed by
// an advisory dispatch channel, backstopped by a periodic poll sweep.
//
// Dispatch is best-effort by design. Admission durably persists the queue row
// before signaling, so a full channel or a crashed worker never loses work —
// the poll sweep re-scans for dispatchable rows on an interval.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/config"
)

// processor is the part of the sync service the pool drives.
type processor interface {
	Process(ctx context.Context, opID uuid.UUID) error
	ProcessDue(ctx context.Context, maxRetries, limit int) (int, error)
}

// Pool is the sync worker pool.
type Pool struct {
	proc processor
	cfg  config.SyncConfig
	log  *slog.Logger

	ch chan uuid.UUID
	wg sync.WaitGroup
}

// NewPool creates a Pool. Call Run to start it.
func NewPool(log *slog.Logger, proc processor, cfg config.SyncConfig) *Pool {
	return &Pool{
		proc: proc,
		cfg:  cfg,
		log:  log.With("component", "sync_worker"),
		ch:   make(chan uuid.UUID, cfg.QueueBuffer),
	}
}

// Dispatch offers an operation id to the pool without blocking.
// Returns false when the buffer is full; the caller treats that as a no-op
// because the row is already durably PENDING.
func (p *Pool) Dispatch(opID uuid.UUID) bool {
	select {
	case p.ch <- opID:
		return true
	default:
		return false
	}
}

// Run starts the workers and the poll sweep and blocks until ctx is
// canceled, then waits for in-flight operations to finish.
func (p *Pool) Run(ctx context.Context) {
	p.log.InfoContext(ctx, "starting sync workers",
		slog.Int("worker_count", p.cfg.WorkerCount),
		slog.Duration("poll_interval", p.cfg.PollInterval),
	)

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.wg.Add(1)
	go p.pollLoop(ctx)

	<-ctx.Done()
	p.wg.Wait()
	p.log.Info("sync workers stopped")
}

// worker consumes advisory dispatch signals. A signal for a row that another
// worker already claimed is silently dropped by the claim step.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With(slog.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		case opID := <-p.ch:
			if err := p.proc.Process(ctx, opID); err != nil {
				log.ErrorContext(ctx, "process dispatched operation",
					slog.String("operation_id", opID.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// pollLoop is the external re-scan the advisory dispatch model requires:
// it claims and processes rows whose dispatch signal was lost, dropped, or
// sent before this process started. Consecutive sweep failures back off
// exponentially so a down database is not hammered.
func (p *Pool) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			claimed, err := p.proc.ProcessDue(ctx, p.cfg.MaxRetries, p.cfg.ClaimBatchSize)
			if err != nil {
				failures++
				delay := Backoff(p.cfg.RetryBaseDelay, failures)
				p.log.WarnContext(ctx, "poll sweep failed",
					slog.String("error", err.Error()),
					slog.Int("consecutive_failures", failures),
					slog.Duration("backoff", delay),
				)
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
				continue
			}
			failures = 0
			if claimed > 0 {
				p.log.DebugContext(ctx, "poll sweep claimed operations", slog.Int("claimed", claimed))
			}
		}
	}
}
