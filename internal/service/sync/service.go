// Package sync implements the offline synchronization core: admission
// validation, the durable operation queue, conflict resolution, and the
// operation processor with its per-type handlers.
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/adapter/postgres/syncqueue"
	"github.com/serenvoice/backend/internal/domain"
)

type queueRepo interface {
	Enqueue(ctx context.Context, op *domain.SyncOperation) (*domain.SyncOperation, error)
	GetByID(ctx context.Context, userID, opID uuid.UUID) (*domain.SyncOperation, error)
	Claim(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error)
	ClaimBatch(ctx context.Context, maxRetries, limit int) ([]*domain.SyncOperation, error)
	MarkCompleted(ctx context.Context, opID uuid.UUID, result *domain.SyncResult) error
	MarkRetry(ctx context.Context, opID uuid.UUID, reason string) error
	List(ctx context.Context, filter syncqueue.ListFilter) ([]*domain.SyncOperation, int, error)
}

type conversationRepo interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Conversation, error)
	InsertMessage(ctx context.Context, msg *domain.Message) (bool, error)
	ExistsMessage(ctx context.Context, conversationID uuid.UUID, clientLocalID string) (bool, error)
}

type emotionRepo interface {
	Insert(ctx context.Context, rec *domain.EmotionRecord) (bool, error)
}

type baselineRepo interface {
	Get(ctx context.Context, userID uuid.UUID, bt domain.BaselineType) (*domain.UserBaseline, error)
	Upsert(ctx context.Context, b *domain.UserBaseline) error
}

type preferenceRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error)
	Upsert(ctx context.Context, p *domain.UserPreferences) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dispatcher signals that an operation is ready for processing. Dispatch is
// advisory: the row is already durably PENDING, so a failed or dropped signal
// only delays processing until the next poll sweep.
type Dispatcher interface {
	Dispatch(opID uuid.UUID) bool
}

// Service provides sync admission, status, and processing operations.
type Service struct {
	queue         queueRepo
	conversations conversationRepo
	emotions      emotionRepo
	baselines     baselineRepo
	preferences   preferenceRepo
	tx            txManager
	dispatcher    Dispatcher
	validator     *Validator
	resolver      *Resolver
	handlers      map[domain.OperationType]handler
	log           *slog.Logger
	now           func() time.Time
}

// NewService creates the sync service and registers the handler for every
// operation type at construction. The registry is closed: the validator
// rejects unknown types at admission, and the processor defends against a
// type missing from the registry by sending the row back for retry.
func NewService(
	log *slog.Logger,
	queue queueRepo,
	conversations conversationRepo,
	emotions emotionRepo,
	baselines baselineRepo,
	preferences preferenceRepo,
	tx txManager,
	dispatcher Dispatcher,
) *Service {
	s := &Service{
		queue:         queue,
		conversations: conversations,
		emotions:      emotions,
		baselines:     baselines,
		preferences:   preferences,
		tx:            tx,
		dispatcher:    dispatcher,
		validator:     NewValidator(),
		resolver:      NewResolver(),
		log:           log.With("service", "sync"),
		now:           func() time.Time { return time.Now().UTC() },
	}

	s.handlers = map[domain.OperationType]handler{
		domain.OperationTypeConversationSync: s.handleConversationSync,
		domain.OperationTypeEmotionDataSync:  s.handleEmotionDataSync,
		domain.OperationTypeBaselineUpdate:   s.handleBaselineUpdate,
		domain.OperationTypePreferenceSync:   s.handlePreferenceSync,
	}

	return s
}

// SetDispatcher late-binds the worker pool. The pool needs the service to
// process operations and the service needs the pool to signal admissions, so
// one side is wired after construction. Call before serving traffic.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}
