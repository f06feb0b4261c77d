package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/adapter/postgres/syncqueue"
	"github.com/serenvoice/backend/internal/domain"
	"github.com/serenvoice/backend/pkg/ctxutil"
)

// GetStatus returns the queue row for status polling, scoped to the
// authenticated user. Unknown ids and other users' rows both surface as
// domain.ErrNotFound.
func (s *Service) GetStatus(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if opID == uuid.Nil {
		return nil, domain.NewValidationError("sync_id", "required")
	}

	op, err := s.queue.GetByID(ctx, userID, opID)
	if err != nil {
		return nil, fmt.Errorf("get operation status: %w", err)
	}

	return op, nil
}

// ListOperationsInput narrows the admin listing of queue rows.
type ListOperationsInput struct {
	UserID        uuid.UUID
	Status        string
	OperationType string
	MinRetryCount int
	Limit         int
	Offset        int
}

// Validate checks all fields and collects all errors.
func (i ListOperationsInput) Validate() error {
	var errs []domain.FieldError

	if i.Status != "" && !domain.OperationStatus(i.Status).IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if i.OperationType != "" && !domain.OperationType(i.OperationType).IsValid() {
		errs = append(errs, domain.FieldError{Field: "operation_type", Message: "unknown operation type"})
	}
	if i.MinRetryCount < 0 {
		errs = append(errs, domain.FieldError{Field: "min_retry_count", Message: "must be non-negative"})
	}
	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListOperations returns queue rows for operator monitoring (retry growth is
// the stuck-operation signal, since admitted rows have no failure state).
// Admin-only; the transport layer enforces the role.
func (s *Service) ListOperations(ctx context.Context, input ListOperationsInput) ([]*domain.SyncOperation, int, error) {
	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	ops, total, err := s.queue.List(ctx, syncqueue.ListFilter{
		UserID:        input.UserID,
		Status:        domain.OperationStatus(input.Status),
		OperationType: domain.OperationType(input.OperationType),
		MinRetryCount: input.MinRetryCount,
		Limit:         limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list operations: %w", err)
	}

	return ops, total, nil
}
