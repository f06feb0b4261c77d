// Package baseline implements UserBaseline persistence using PostgreSQL.
// Exactly one live row exists per (user_id, baseline_type); writes go through
// the conflict resolver in the service layer, so this repo only offers
// read-current and upsert-winner.
package baseline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/domain"
)

// Repo provides user baseline persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new baseline repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT user_id, baseline_type, value, updated_at
FROM user_baselines
WHERE user_id = $1 AND baseline_type = $2`

const upsertSQL = `
INSERT INTO user_baselines (user_id, baseline_type, value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, baseline_type) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// Get returns the stored baseline for (user, type).
// Returns domain.ErrNotFound when no baseline exists yet.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID, bt domain.BaselineType) (*domain.UserBaseline, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		b     domain.UserBaseline
		btRaw string
		value []byte
	)
	row := querier.QueryRow(ctx, getSQL, userID, string(bt))
	if err := row.Scan(&b.UserID, &btRaw, &value, &b.UpdatedAt); err != nil {
		return nil, postgres.MapError(err, "user_baseline", fmt.Sprintf("%s/%s", userID, bt))
	}

	b.BaselineType = domain.BaselineType(btRaw)
	b.Value = value

	return &b, nil
}

// Upsert writes the winning baseline version. The caller has already decided
// via the conflict resolver that this version should be stored.
func (r *Repo) Upsert(ctx context.Context, b *domain.UserBaseline) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var updatedAt *time.Time
	if b.UpdatedAt != nil {
		t := b.UpdatedAt.UTC().Truncate(time.Microsecond)
		updatedAt = &t
	}

	_, err := querier.Exec(ctx, upsertSQL, b.UserID, string(b.BaselineType), b.Value, updatedAt)
	if err != nil {
		return postgres.MapError(err, "user_baseline", fmt.Sprintf("%s/%s", b.UserID, b.BaselineType))
	}

	return nil
}
