// Package preference implements UserPreferences persistence using PostgreSQL.
// One mutable row per user, merged in the service layer under last-write-wins.
package preference

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/domain"
)

// Repo provides user preferences persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new preference repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT user_id, value, updated_at
FROM user_preferences
WHERE user_id = $1`

const upsertSQL = `
INSERT INTO user_preferences (user_id, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// Get returns the stored preferences for a user.
// Returns domain.ErrNotFound when the user has no preferences row yet.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		p     domain.UserPreferences
		value []byte
	)
	row := querier.QueryRow(ctx, getSQL, userID)
	if err := row.Scan(&p.UserID, &value, &p.UpdatedAt); err != nil {
		return nil, postgres.MapError(err, "user_preferences", userID.String())
	}

	p.Value = value

	return &p, nil
}

// Upsert writes the winning preferences version.
func (r *Repo) Upsert(ctx context.Context, p *domain.UserPreferences) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var updatedAt *time.Time
	if p.UpdatedAt != nil {
		t := p.UpdatedAt.UTC().Truncate(time.Microsecond)
		updatedAt = &t
	}

	_, err := querier.Exec(ctx, upsertSQL, p.UserID, p.Value, updatedAt)
	if err != nil {
		return postgres.MapError(err, "user_preferences", p.UserID.String())
	}

	return nil
}
