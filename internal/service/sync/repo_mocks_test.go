package sync

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
)

var (
	_ conversationRepo = &conversationRepoMock{}
	_ emotionRepo      = &emotionRepoMock{}
	_ baselineRepo     = &baselineRepoMock{}
	_ preferenceRepo   = &preferenceRepoMock{}
	_ txManager        = &txManagerMock{}
	_ Dispatcher       = &dispatcherMock{}
)

type conversationRepoMock struct {
	GetOrCreateFunc   func(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Conversation, error)
	InsertMessageFunc func(ctx context.Context, msg *domain.Message) (bool, error)
	ExistsMessageFunc func(ctx context.Context, conversationID uuid.UUID, clientLocalID string) (bool, error)

	calls struct {
		InsertMessage []struct {
			Msg *domain.Message
		}
		ExistsMessage []struct {
			ConversationID uuid.UUID
			ClientLocalID  string
		}
	}
	mu sync.Mutex
}

func (mock *conversationRepoMock) GetOrCreate(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	if mock.GetOrCreateFunc == nil {
		panic("conversationRepoMock.GetOrCreateFunc: method is nil but conversationRepo.GetOrCreate was just called")
	}
	return mock.GetOrCreateFunc(ctx, userID, sessionID)
}

func (mock *conversationRepoMock) InsertMessage(ctx context.Context, msg *domain.Message) (bool, error) {
	if mock.InsertMessageFunc == nil {
		panic("conversationRepoMock.InsertMessageFunc: method is nil but conversationRepo.InsertMessage was just called")
	}
	mock.mu.Lock()
	mock.calls.InsertMessage = append(mock.calls.InsertMessage, struct {
		Msg *domain.Message
	}{Msg: msg})
	mock.mu.Unlock()
	return mock.InsertMessageFunc(ctx, msg)
}

func (mock *conversationRepoMock) InsertMessageCalls() []struct {
	Msg *domain.Message
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.InsertMessage
}

func (mock *conversationRepoMock) ExistsMessage(ctx context.Context, conversationID uuid.UUID, clientLocalID string) (bool, error) {
	if mock.ExistsMessageFunc == nil {
		panic("conversationRepoMock.ExistsMessageFunc: method is nil but conversationRepo.ExistsMessage was just called")
	}
	mock.mu.Lock()
	mock.calls.ExistsMessage = append(mock.calls.ExistsMessage, struct {
		ConversationID uuid.UUID
		ClientLocalID  string
	}{ConversationID: conversationID, ClientLocalID: clientLocalID})
	mock.mu.Unlock()
	return mock.ExistsMessageFunc(ctx, conversationID, clientLocalID)
}

func (mock *conversationRepoMock) ExistsMessageCalls() []struct {
	ConversationID uuid.UUID
	ClientLocalID  string
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.ExistsMessage
}

type emotionRepoMock struct {
	InsertFunc func(ctx context.Context, rec *domain.EmotionRecord) (bool, error)

	calls struct {
		Insert []struct {
			Rec *domain.EmotionRecord
		}
	}
	mu sync.Mutex
}

func (mock *emotionRepoMock) Insert(ctx context.Context, rec *domain.EmotionRecord) (bool, error) {
	if mock.InsertFunc == nil {
		panic("emotionRepoMock.InsertFunc: method is nil but emotionRepo.Insert was just called")
	}
	mock.mu.Lock()
	mock.calls.Insert = append(mock.calls.Insert, struct {
		Rec *domain.EmotionRecord
	}{Rec: rec})
	mock.mu.Unlock()
	return mock.InsertFunc(ctx, rec)
}

func (mock *emotionRepoMock) InsertCalls() []struct {
	Rec *domain.EmotionRecord
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Insert
}

type baselineRepoMock struct {
	GetFunc    func(ctx context.Context, userID uuid.UUID, bt domain.BaselineType) (*domain.UserBaseline, error)
	UpsertFunc func(ctx context.Context, b *domain.UserBaseline) error

	calls struct {
		Upsert []struct {
			B *domain.UserBaseline
		}
	}
	mu sync.Mutex
}

func (mock *baselineRepoMock) Get(ctx context.Context, userID uuid.UUID, bt domain.BaselineType) (*domain.UserBaseline, error) {
	if mock.GetFunc == nil {
		panic("baselineRepoMock.GetFunc: method is nil but baselineRepo.Get was just called")
	}
	return mock.GetFunc(ctx, userID, bt)
}

func (mock *baselineRepoMock) Upsert(ctx context.Context, b *domain.UserBaseline) error {
	if mock.UpsertFunc == nil {
		panic("baselineRepoMock.UpsertFunc: method is nil but baselineRepo.Upsert was just called")
	}
	mock.mu.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, struct {
		B *domain.UserBaseline
	}{B: b})
	mock.mu.Unlock()
	return mock.UpsertFunc(ctx, b)
}

func (mock *baselineRepoMock) UpsertCalls() []struct {
	B *domain.UserBaseline
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Upsert
}

type preferenceRepoMock struct {
	GetFunc    func(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error)
	UpsertFunc func(ctx context.Context, p *domain.UserPreferences) error

	calls struct {
		Upsert []struct {
			P *domain.UserPreferences
		}
	}
	mu sync.Mutex
}

func (mock *preferenceRepoMock) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	if mock.GetFunc == nil {
		panic("preferenceRepoMock.GetFunc: method is nil but preferenceRepo.Get was just called")
	}
	return mock.GetFunc(ctx, userID)
}

func (mock *preferenceRepoMock) Upsert(ctx context.Context, p *domain.UserPreferences) error {
	if mock.UpsertFunc == nil {
		panic("preferenceRepoMock.UpsertFunc: method is nil but preferenceRepo.Upsert was just called")
	}
	mock.mu.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, struct {
		P *domain.UserPreferences
	}{P: p})
	mock.mu.Unlock()
	return mock.UpsertFunc(ctx, p)
}

func (mock *preferenceRepoMock) UpsertCalls() []struct {
	P *domain.UserPreferences
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Upsert
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		return fn(ctx)
	}
	return mock.RunInTxFunc(ctx, fn)
}

type dispatcherMock struct {
	DispatchFunc func(opID uuid.UUID) bool

	calls struct {
		Dispatch []struct {
			OpID uuid.UUID
		}
	}
	mu sync.Mutex
}

func (mock *dispatcherMock) Dispatch(opID uuid.UUID) bool {
	if mock.DispatchFunc == nil {
		panic("dispatcherMock.DispatchFunc: method is nil but Dispatcher.Dispatch was just called")
	}
	mock.mu.Lock()
	mock.calls.Dispatch = append(mock.calls.Dispatch, struct {
		OpID uuid.UUID
	}{OpID: opID})
	mock.mu.Unlock()
	return mock.DispatchFunc(opID)
}

func (mock *dispatcherMock) DispatchCalls() []struct {
	OpID uuid.UUID
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Dispatch
}
