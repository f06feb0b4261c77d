package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
	syncsvc "github.com/serenvoice/backend/internal/service/sync"
	"github.com/serenvoice/backend/internal/transport/middleware"
)

type adminSyncService interface {
	ListOperations(ctx context.Context, input syncsvc.ListOperationsInput) ([]*domain.SyncOperation, int, error)
}

// AdminHandler serves operator-only endpoints.
type AdminHandler struct {
	svc adminSyncService
	log *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc adminSyncService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: logger.With("handler", "admin")}
}

type adminOperationResponse struct {
	SyncID        string          `json:"sync_id"`
	UserID        string          `json:"user_id"`
	OperationType string          `json:"operation_type"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	RetryCount    int             `json:"retry_count"`
	ClaimedAt     *time.Time      `json:"claimed_at,omitempty"`
	LastError     *string         `json:"last_error,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
}

type adminListResponse struct {
	Operations []adminOperationResponse `json:"operations"`
	Total      int                      `json:"total"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
}

// ListOperations handles GET /v1/admin/sync.
func (h *AdminHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	input, err := parseListInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ops, total, err := h.svc.ListOperations(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := adminListResponse{
		Operations: make([]adminOperationResponse, 0, len(ops)),
		Total:      total,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	if resp.Limit == 0 {
		resp.Limit = 50
	}
	for _, op := range ops {
		resp.Operations = append(resp.Operations, adminOperationResponse{
			SyncID:        op.ID.String(),
			UserID:        op.UserID.String(),
			OperationType: op.OperationType.String(),
			Status:        op.Status.String(),
			CreatedAt:     op.CreatedAt,
			ProcessedAt:   op.ProcessedAt,
			RetryCount:    op.RetryCount,
			ClaimedAt:     op.ClaimedAt,
			LastError:     op.LastError,
			Result:        op.Result,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseListInput(r *http.Request) (syncsvc.ListOperationsInput, error) {
	q := r.URL.Query()
	input := syncsvc.ListOperationsInput{
		Status:        q.Get("status"),
		OperationType: q.Get("operation_type"),
	}

	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return input, domain.NewValidationError("user_id", "must be a uuid")
		}
		input.UserID = id
	}
	var err error
	if input.MinRetryCount, err = parseIntParam(q.Get("min_retry_count")); err != nil {
		return input, domain.NewValidationError("min_retry_count", "must be an integer")
	}
	if input.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		return input, domain.NewValidationError("limit", "must be an integer")
	}
	if input.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		return input, domain.NewValidationError("offset", "must be an integer")
	}

	return input, nil
}

func parseIntParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
