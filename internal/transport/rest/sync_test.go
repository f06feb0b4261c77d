package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
	syncsvc "github.com/serenvoice/backend/internal/service/sync"
)

type syncServiceMock struct {
	SubmitFunc    func(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error)
	GetStatusFunc func(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error)
}

func (m *syncServiceMock) Submit(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error) {
	return m.SubmitFunc(ctx, input)
}

func (m *syncServiceMock) GetStatus(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error) {
	return m.GetStatusFunc(ctx, opID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncHandler_Submit_Accepted(t *testing.T) {
	t.Parallel()

	opID := uuid.New()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	svc := &syncServiceMock{
		SubmitFunc: func(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error) {
			if input.OperationType != "conversation_sync" {
				t.Errorf("expected operation_type conversation_sync, got %q", input.OperationType)
			}
			return &syncsvc.SubmitResult{
				Operation: &domain.SyncOperation{
					ID:        opID,
					Status:    domain.OperationStatusPending,
					CreatedAt: created,
				},
			}, nil
		},
	}
	h := NewSyncHandler(svc, testLogger())

	body := `{"operation_type": "conversation_sync", "data": {"conversation_id": "s1", "messages": []}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sync", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp submitResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SyncID != opID.String() {
		t.Errorf("expected sync_id %s, got %s", opID, resp.SyncID)
	}
	if resp.Status != "queued" {
		t.Errorf("expected status 'queued', got %q", resp.Status)
	}
	if !resp.Timestamp.Equal(created) {
		t.Errorf("expected timestamp %v, got %v", created, resp.Timestamp)
	}
}

func TestSyncHandler_Submit_ValidationError(t *testing.T) {
	t.Parallel()

	svc := &syncServiceMock{
		SubmitFunc: func(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error) {
			return nil, domain.NewValidationError("operation_type", "unsupported operation type")
		},
	}
	h := NewSyncHandler(svc, testLogger())

	body := `{"operation_type": "bulk_delete", "data": {}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sync", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSyncHandler_Submit_Unauthenticated(t *testing.T) {
	t.Parallel()

	svc := &syncServiceMock{
		SubmitFunc: func(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error) {
			return nil, domain.ErrUnauthorized
		},
	}
	h := NewSyncHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/sync", strings.NewReader(`{"operation_type": "conversation_sync", "data": {}}`))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestSyncHandler_Submit_MalformedBody(t *testing.T) {
	t.Parallel()

	h := NewSyncHandler(&syncServiceMock{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/sync", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSyncHandler_Submit_InternalError(t *testing.T) {
	t.Parallel()

	svc := &syncServiceMock{
		SubmitFunc: func(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := NewSyncHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/sync", strings.NewReader(`{"operation_type": "conversation_sync", "data": {}}`))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal error details must not leak to the client")
	}
}

func TestSyncHandler_Status_Found(t *testing.T) {
	t.Parallel()

	opID := uuid.New()
	processed := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)

	svc := &syncServiceMock{
		GetStatusFunc: func(ctx context.Context, id uuid.UUID) (*domain.SyncOperation, error) {
			if id != opID {
				t.Errorf("expected opID %s, got %s", opID, id)
			}
			return &domain.SyncOperation{
				ID:          opID,
				Status:      domain.OperationStatusCompleted,
				ProcessedAt: &processed,
				Result:      json.RawMessage(`{"messages_inserted": 3}`),
			}, nil
		},
	}
	h := NewSyncHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/sync/"+opID.String(), nil)
	req.SetPathValue("sync_id", opID.String())
	rec := httptest.NewRecorder()

	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "COMPLETED" {
		t.Errorf("expected status COMPLETED, got %q", resp.Status)
	}
	if resp.ProcessedAt == nil {
		t.Error("expected processed_at to be set")
	}
	if len(resp.Result) == 0 {
		t.Error("expected result to be included")
	}
}

func TestSyncHandler_Status_NotFound(t *testing.T) {
	t.Parallel()

	svc := &syncServiceMock{
		GetStatusFunc: func(ctx context.Context, id uuid.UUID) (*domain.SyncOperation, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := NewSyncHandler(svc, testLogger())

	opID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sync/"+opID.String(), nil)
	req.SetPathValue("sync_id", opID.String())
	rec := httptest.NewRecorder()

	h.Status(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestSyncHandler_Status_InvalidID(t *testing.T) {
	t.Parallel()

	h := NewSyncHandler(&syncServiceMock{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/sync/not-a-uuid", nil)
	req.SetPathValue("sync_id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.Status(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
