// Package emotion implements emotion record persistence using PostgreSQL.
// Records are append-only and idempotent by (user_id, dedupe_key); a row is
// never updated in place.
package emotion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/domain"
)

// Repo provides emotion record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new emotion repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO emotion_records (id, user_id, dedupe_key, recorded_at, metrics, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, dedupe_key) DO NOTHING`

const countByUserSQL = `
SELECT count(*) FROM emotion_records WHERE user_id = $1`

// Insert appends an emotion record. Returns false without error when a record
// with the same dedupe key already exists for the user.
func (r *Repo) Insert(ctx context.Context, rec *domain.EmotionRecord) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, insertSQL,
		rec.ID,
		rec.UserID,
		rec.DedupeKey,
		rec.RecordedAt.UTC().Truncate(time.Microsecond),
		rec.Metrics,
		time.Now().UTC().Truncate(time.Microsecond),
	)
	if err != nil {
		return false, postgres.MapError(err, "emotion_record", rec.DedupeKey)
	}

	return tag.RowsAffected() > 0, nil
}

// CountByUser returns the number of stored records for a user.
func (r *Repo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByUserSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count emotion_records: %w", err)
	}

	return count, nil
}
