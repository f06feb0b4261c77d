package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
)

type conversationSyncPayload struct {
	ConversationID string               `json:"conversation_id"`
	Messages       []messageSyncPayload `json:"messages"`
}

type messageSyncPayload struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Content    *string         `json:"content"`
	Annotation json.RawMessage `json:"annotation"`
	Timestamp  *time.Time      `json:"timestamp"`
}

// handleConversationSync appends the batch of messages to the target
// conversation. Each item's outcome is independent: already-stored ids are
// skipped, malformed items are counted as failures, and the operation
// completes either way — partial success is the normal outcome for
// append-only batches.
func (s *Service) handleConversationSync(ctx context.Context, op *domain.SyncOperation) (*domain.SyncResult, error) {
	var payload conversationSyncPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode conversation_sync payload: %w", err)
	}

	conv, err := s.conversations.GetOrCreate(ctx, op.UserID, payload.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}

	result := &domain.SyncResult{}

	for _, m := range payload.Messages {
		if m.Content == nil || strings.TrimSpace(*m.Content) == "" {
			// Already-stored ids are skips even when the redelivered copy
			// lost its content; only genuinely new malformed items fail.
			exists, err := s.conversations.ExistsMessage(ctx, conv.ID, m.ID)
			if err != nil {
				return nil, fmt.Errorf("check message %s: %w", m.ID, err)
			}
			if exists {
				result.MessagesSkipped++
				continue
			}
			result.MessagesFailed++
			s.log.WarnContext(ctx, "skipping malformed message",
				slog.String("operation_id", op.ID.String()),
				slog.String("client_local_id", m.ID),
			)
			continue
		}

		msgType := domain.MessageType(strings.ToUpper(m.Type))
		if !msgType.IsValid() {
			msgType = domain.MessageTypeUser
		}

		timestamp := s.now()
		if m.Timestamp != nil {
			timestamp = *m.Timestamp
		}

		inserted, err := s.conversations.InsertMessage(ctx, &domain.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			ClientLocalID:  m.ID,
			Type:           msgType,
			Content:        *m.Content,
			Annotation:     m.Annotation,
			Timestamp:      timestamp,
		})
		if err != nil {
			// Storage failure: abort and retry the whole batch. The inserts
			// that already ran roll back with the transaction, so the retry
			// starts clean.
			return nil, fmt.Errorf("insert message %s: %w", m.ID, err)
		}

		if inserted {
			result.MessagesInserted++
		} else {
			result.MessagesSkipped++
		}
	}

	return result, nil
}
