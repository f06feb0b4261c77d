package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/serenvoice/backend/internal/domain"
)

type baselineUpdatePayload struct {
	BaselineData json.RawMessage `json:"baseline_data"`
}

// baselineEnvelope pulls the type tag and timestamp out of the otherwise
// opaque baseline blob.
type baselineEnvelope struct {
	BaselineType string     `json:"baseline_type"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// handleBaselineUpdate merges the incoming baseline against the stored row
// for (user, baseline type) under last-write-wins. If the stored version
// wins, no write occurs — losing the comparison is success, not failure.
func (s *Service) handleBaselineUpdate(ctx context.Context, op *domain.SyncOperation) (*domain.SyncResult, error) {
	var payload baselineUpdatePayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode baseline_update payload: %w", err)
	}

	var envelope baselineEnvelope
	if err := json.Unmarshal(payload.BaselineData, &envelope); err != nil {
		return nil, fmt.Errorf("decode baseline envelope: %w", err)
	}
	bt := domain.BaselineType(envelope.BaselineType)

	local, err := s.baselines.Get(ctx, op.UserID, bt)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load baseline: %w", err)
	}

	remote := Version{Value: payload.BaselineData, UpdatedAt: envelope.UpdatedAt}

	if local == nil {
		// Nothing stored yet: the incoming version is authoritative.
		if err := s.baselines.Upsert(ctx, &domain.UserBaseline{
			UserID:       op.UserID,
			BaselineType: bt,
			Value:        remote.Value,
			UpdatedAt:    remote.UpdatedAt,
		}); err != nil {
			return nil, fmt.Errorf("store baseline: %w", err)
		}
		return &domain.SyncResult{Applied: true}, nil
	}

	winner, remoteWon := s.resolver.Resolve(
		Version{Value: local.Value, UpdatedAt: local.UpdatedAt},
		remote,
		StrategyLastWriteWins,
	)
	if !remoteWon {
		// Stored state is newer or equal: keep it, no write.
		return &domain.SyncResult{Applied: false}, nil
	}

	if err := s.baselines.Upsert(ctx, &domain.UserBaseline{
		UserID:       op.UserID,
		BaselineType: bt,
		Value:        winner.Value,
		UpdatedAt:    winner.UpdatedAt,
	}); err != nil {
		return nil, fmt.Errorf("store baseline: %w", err)
	}

	return &domain.SyncResult{Applied: true}, nil
}
