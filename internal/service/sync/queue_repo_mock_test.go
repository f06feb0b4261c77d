package sync

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/adapter/postgres/syncqueue"
	"github.com/serenvoice/backend/internal/domain"
)

var _ queueRepo = &queueRepoMock{}

type queueRepoMock struct {
	EnqueueFunc       func(ctx context.Context, op *domain.SyncOperation) (*domain.SyncOperation, error)
	GetByIDFunc       func(ctx context.Context, userID, opID uuid.UUID) (*domain.SyncOperation, error)
	ClaimFunc         func(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error)
	ClaimBatchFunc    func(ctx context.Context, maxRetries, limit int) ([]*domain.SyncOperation, error)
	MarkCompletedFunc func(ctx context.Context, opID uuid.UUID, result *domain.SyncResult) error
	MarkRetryFunc     func(ctx context.Context, opID uuid.UUID, reason string) error
	ListFunc          func(ctx context.Context, filter syncqueue.ListFilter) ([]*domain.SyncOperation, int, error)

	calls struct {
		Enqueue []struct {
			Op *domain.SyncOperation
		}
		Claim []struct {
			OpID uuid.UUID
		}
		ClaimBatch []struct {
			MaxRetries int
			Limit      int
		}
		MarkCompleted []struct {
			OpID   uuid.UUID
			Result *domain.SyncResult
		}
		MarkRetry []struct {
			OpID   uuid.UUID
			Reason string
		}
	}
	mu sync.Mutex
}

func (mock *queueRepoMock) Enqueue(ctx context.Context, op *domain.SyncOperation) (*domain.SyncOperation, error) {
	if mock.EnqueueFunc == nil {
		panic("queueRepoMock.EnqueueFunc: method is nil but queueRepo.Enqueue was just called")
	}
	mock.mu.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, struct {
		Op *domain.SyncOperation
	}{Op: op})
	mock.mu.Unlock()
	return mock.EnqueueFunc(ctx, op)
}

func (mock *queueRepoMock) EnqueueCalls() []struct {
	Op *domain.SyncOperation
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Enqueue
}

func (mock *queueRepoMock) GetByID(ctx context.Context, userID, opID uuid.UUID) (*domain.SyncOperation, error) {
	if mock.GetByIDFunc == nil {
		panic("queueRepoMock.GetByIDFunc: method is nil but queueRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, userID, opID)
}

func (mock *queueRepoMock) Claim(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error) {
	if mock.ClaimFunc == nil {
		panic("queueRepoMock.ClaimFunc: method is nil but queueRepo.Claim was just called")
	}
	mock.mu.Lock()
	mock.calls.Claim = append(mock.calls.Claim, struct {
		OpID uuid.UUID
	}{OpID: opID})
	mock.mu.Unlock()
	return mock.ClaimFunc(ctx, opID)
}

func (mock *queueRepoMock) ClaimCalls() []struct {
	OpID uuid.UUID
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Claim
}

func (mock *queueRepoMock) ClaimBatch(ctx context.Context, maxRetries, limit int) ([]*domain.SyncOperation, error) {
	if mock.ClaimBatchFunc == nil {
		panic("queueRepoMock.ClaimBatchFunc: method is nil but queueRepo.ClaimBatch was just called")
	}
	mock.mu.Lock()
	mock.calls.ClaimBatch = append(mock.calls.ClaimBatch, struct {
		MaxRetries int
		Limit      int
	}{MaxRetries: maxRetries, Limit: limit})
	mock.mu.Unlock()
	return mock.ClaimBatchFunc(ctx, maxRetries, limit)
}

func (mock *queueRepoMock) MarkCompleted(ctx context.Context, opID uuid.UUID, result *domain.SyncResult) error {
	if mock.MarkCompletedFunc == nil {
		panic("queueRepoMock.MarkCompletedFunc: method is nil but queueRepo.MarkCompleted was just called")
	}
	mock.mu.Lock()
	mock.calls.MarkCompleted = append(mock.calls.MarkCompleted, struct {
		OpID   uuid.UUID
		Result *domain.SyncResult
	}{OpID: opID, Result: result})
	mock.mu.Unlock()
	return mock.MarkCompletedFunc(ctx, opID, result)
}

func (mock *queueRepoMock) MarkCompletedCalls() []struct {
	OpID   uuid.UUID
	Result *domain.SyncResult
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.MarkCompleted
}

func (mock *queueRepoMock) MarkRetry(ctx context.Context, opID uuid.UUID, reason string) error {
	if mock.MarkRetryFunc == nil {
		panic("queueRepoMock.MarkRetryFunc: method is nil but queueRepo.MarkRetry was just called")
	}
	mock.mu.Lock()
	mock.calls.MarkRetry = append(mock.calls.MarkRetry, struct {
		OpID   uuid.UUID
		Reason string
	}{OpID: opID, Reason: reason})
	mock.mu.Unlock()
	return mock.MarkRetryFunc(ctx, opID, reason)
}

func (mock *queueRepoMock) MarkRetryCalls() []struct {
	OpID   uuid.UUID
	Reason string
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.MarkRetry
}

func (mock *queueRepoMock) List(ctx context.Context, filter syncqueue.ListFilter) ([]*domain.SyncOperation, int, error) {
	if mock.ListFunc == nil {
		panic("queueRepoMock.ListFunc: method is nil but queueRepo.List was just called")
	}
	return mock.ListFunc(ctx, filter)
}
