package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
)

// handler applies one operation type. It runs inside the processing
// transaction: returning an error rolls back every domain write it made.
type handler func(ctx context.Context, op *domain.SyncOperation) (*domain.SyncResult, error)

// Process claims and processes one advisory-dispatched operation.
// If the row is gone, already completed, or claimed by another worker, this
// is a silent no-op — the dispatch signal was only a hint.
func (s *Service) Process(ctx context.Context, opID uuid.UUID) error {
	op, err := s.queue.Claim(ctx, opID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("claim operation: %w", err)
	}

	s.processClaimed(ctx, op)
	return nil
}

// ProcessDue claims up to limit dispatchable operations (the poll sweep that
// backstops lost dispatch signals) and processes them sequentially.
// Returns how many operations were claimed.
func (s *Service) ProcessDue(ctx context.Context, maxRetries, limit int) (int, error) {
	ops, err := s.queue.ClaimBatch(ctx, maxRetries, limit)
	if err != nil {
		return 0, fmt.Errorf("claim batch: %w", err)
	}

	for _, op := range ops {
		s.processClaimed(ctx, op)
	}

	return len(ops), nil
}

// processClaimed runs a claimed operation to its next durable state:
// COMPLETED on success, or back to PENDING with retry_count+1 on any
// failure. The handler's domain writes and the status transition commit in
// one transaction, so a half-applied operation cannot be observed — a
// retried row re-runs against unchanged state and the idempotent writes
// absorb the redelivery.
func (s *Service) processClaimed(ctx context.Context, op *domain.SyncOperation) {
	log := s.log.With(
		slog.String("operation_id", op.ID.String()),
		slog.String("operation_type", op.OperationType.String()),
		slog.String("user_id", op.UserID.String()),
	)

	h, ok := s.handlers[op.OperationType]
	if !ok {
		// Unreachable when the validator did its job; still, an unknown type
		// is not something this worker can resolve, so treat it like any
		// other recoverable failure and let it come back around.
		s.retry(ctx, log, op, fmt.Errorf("no handler registered for operation type %q", op.OperationType))
		return
	}

	var result *domain.SyncResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var handleErr error
		result, handleErr = h(txCtx, op)
		if handleErr != nil {
			return handleErr
		}
		return s.queue.MarkCompleted(txCtx, op.ID, result)
	})
	if err != nil {
		s.retry(ctx, log, op, err)
		return
	}

	log.InfoContext(ctx, "sync operation completed",
		slog.Int("retry_count", op.RetryCount),
		slog.Any("result", result),
	)
}

// retry sends the operation back to the dispatchable pool. Status stays
// PENDING; only the retry counter and last_error change.
func (s *Service) retry(ctx context.Context, log *slog.Logger, op *domain.SyncOperation, cause error) {
	log.WarnContext(ctx, "sync operation failed, scheduling retry",
		slog.Int("retry_count", op.RetryCount),
		slog.String("error", cause.Error()),
	)

	if err := s.queue.MarkRetry(ctx, op.ID, cause.Error()); err != nil {
		// The claim stays set; the stale-claim sweep will release the row.
		log.ErrorContext(ctx, "mark retry failed", slog.String("error", err.Error()))
	}
}
