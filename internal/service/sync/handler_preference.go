package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/serenvoice/backend/internal/domain"
)

type preferenceSyncPayload struct {
	Preferences json.RawMessage `json:"preferences"`
	UpdatedAt   *time.Time      `json:"updated_at"`
}

// handlePreferenceSync merges the incoming preferences blob against the
// per-user row, identical in shape to the baseline merge.
func (s *Service) handlePreferenceSync(ctx context.Context, op *domain.SyncOperation) (*domain.SyncResult, error) {
	var payload preferenceSyncPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode user_preference_sync payload: %w", err)
	}

	local, err := s.preferences.Get(ctx, op.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	remote := Version{Value: payload.Preferences, UpdatedAt: payload.UpdatedAt}

	if local == nil {
		if err := s.preferences.Upsert(ctx, &domain.UserPreferences{
			UserID:    op.UserID,
			Value:     remote.Value,
			UpdatedAt: remote.UpdatedAt,
		}); err != nil {
			return nil, fmt.Errorf("store preferences: %w", err)
		}
		return &domain.SyncResult{Applied: true}, nil
	}

	winner, remoteWon := s.resolver.Resolve(
		Version{Value: local.Value, UpdatedAt: local.UpdatedAt},
		remote,
		StrategyLastWriteWins,
	)
	if !remoteWon {
		return &domain.SyncResult{Applied: false}, nil
	}

	if err := s.preferences.Upsert(ctx, &domain.UserPreferences{
		UserID:    op.UserID,
		Value:     winner.Value,
		UpdatedAt: winner.UpdatedAt,
	}); err != nil {
		return nil, fmt.Errorf("store preferences: %w", err)
	}

	return &domain.SyncResult{Applied: true}, nil
}
