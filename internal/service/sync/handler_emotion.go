package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
)

type emotionDataSyncPayload struct {
	EmotionData []emotionRecordPayload `json:"emotion_data"`
}

type emotionRecordPayload struct {
	ID         string          `json:"id"`
	RecordedAt *time.Time      `json:"recorded_at"`
	Metrics    json.RawMessage `json:"metrics"`
}

// handleEmotionDataSync appends emotion observations with the same
// insert-only, idempotent-by-dedupe-key pattern as conversation messages.
// There is no merge step: records are never updated in place.
func (s *Service) handleEmotionDataSync(ctx context.Context, op *domain.SyncOperation) (*domain.SyncResult, error) {
	var payload emotionDataSyncPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode emotion_data_sync payload: %w", err)
	}

	result := &domain.SyncResult{}

	for _, rec := range payload.EmotionData {
		if len(rec.Metrics) == 0 {
			result.RecordsFailed++
			continue
		}

		// The stored recorded_at falls back to the processing clock, but the
		// dedupe key is derived only from what the client sent, so a
		// redelivered untimestamped record still maps to the same key.
		recordedAt := s.now()
		if rec.RecordedAt != nil {
			recordedAt = *rec.RecordedAt
		}

		inserted, err := s.emotions.Insert(ctx, &domain.EmotionRecord{
			ID:         uuid.New(),
			UserID:     op.UserID,
			DedupeKey:  domain.EmotionDedupeKey(op.UserID, rec.ID, rec.RecordedAt, rec.Metrics),
			RecordedAt: recordedAt,
			Metrics:    rec.Metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("insert emotion record: %w", err)
		}

		if inserted {
			result.RecordsInserted++
		} else {
			result.RecordsSkipped++
		}
	}

	return result, nil
}
