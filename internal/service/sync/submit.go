package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
	"github.com/serenvoice/backend/pkg/ctxutil"
)

// SubmitInput holds a client-submitted sync operation.
type SubmitInput struct {
	OperationType string
	Data          json.RawMessage
}

// SubmitResult is the admission outcome for an accepted operation.
type SubmitResult struct {
	Operation *domain.SyncOperation
	Warnings  []string
}

// Submit validates and durably enqueues an operation, then best-effort
// signals a worker. Validation failures never produce a queue row. The
// dispatch signal is advisory: if it cannot be delivered the row is already
// safely PENDING and the poll sweep will pick it up.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	opType, warnings, err := s.validator.Validate(userID, input.OperationType, input.Data)
	if err != nil {
		return nil, err
	}

	op, err := s.queue.Enqueue(ctx, &domain.SyncOperation{
		ID:            uuid.New(),
		UserID:        userID,
		OperationType: opType,
		Payload:       input.Data,
		Status:        domain.OperationStatusPending,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue operation: %w", err)
	}

	delivered := false
	if s.dispatcher != nil {
		delivered = s.dispatcher.Dispatch(op.ID)
	}

	s.log.InfoContext(ctx, "sync operation admitted",
		slog.String("operation_id", op.ID.String()),
		slog.String("operation_type", opType.String()),
		slog.String("user_id", userID.String()),
		slog.Bool("dispatched", delivered),
		slog.Int("warnings", len(warnings)),
	)

	return &SubmitResult{Operation: op, Warnings: warnings}, nil
}
