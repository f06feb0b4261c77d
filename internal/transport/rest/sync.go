package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
	syncsvc "github.com/serenvoice/backend/internal/service/sync"
)

// syncService defines the minimal interface needed by SyncHandler.
type syncService interface {
	Submit(ctx context.Context, input syncsvc.SubmitInput) (*syncsvc.SubmitResult, error)
	GetStatus(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error)
}

// SyncHandler serves the sync admission and status REST endpoints.
type SyncHandler struct {
	svc syncService
	log *slog.Logger
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(svc syncService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, log: logger.With("handler", "sync")}
}

type submitRequest struct {
	OperationType string          `json:"operation_type"`
	Data          json.RawMessage `json:"data"`
}

type submitResponse struct {
	SyncID    string    `json:"sync_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Warnings  []string  `json:"warnings,omitempty"`
}

type statusResponse struct {
	SyncID      string          `json:"sync_id"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	RetryCount  int             `json:"retry_count"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Submit handles POST /v1/sync.
func (h *SyncHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Submit(r.Context(), syncsvc.SubmitInput{
		OperationType: req.OperationType,
		Data:          req.Data,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		SyncID:    result.Operation.ID.String(),
		Status:    "queued",
		Timestamp: result.Operation.CreatedAt,
		Warnings:  result.Warnings,
	})
}

// Status handles GET /v1/sync/{sync_id}.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	opID, err := uuid.Parse(r.PathValue("sync_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sync_id")
		return
	}

	op, err := h.svc.GetStatus(r.Context(), opID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toStatusResponse(op))
}

func toStatusResponse(op *domain.SyncOperation) statusResponse {
	return statusResponse{
		SyncID:      op.ID.String(),
		Status:      op.Status.String(),
		CreatedAt:   op.CreatedAt,
		ProcessedAt: op.ProcessedAt,
		RetryCount:  op.RetryCount,
		Result:      op.Result,
	}
}

func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
