// Package syncqueue implements the durable sync operation queue using
// PostgreSQL. The queue is the single source of truth for what work exists
// and what state it is in. Rows are never deleted here; retention is a
// separate concern.
//
// Claiming uses FOR UPDATE SKIP LOCKED plus a claimed_at marker so that
// concurrent workers cannot process the same row twice. A claim is released
// either by completing the row, by sending it back for retry, or by the
// stale-claim sweep after a worker crash.
package syncqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/domain"
)

// Repo provides sync operation queue persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sync queue repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const opColumns = `id, user_id, operation_type, payload, status, created_at, processed_at, retry_count, claimed_at, last_error, result`

const enqueueSQL = `
INSERT INTO sync_operations (id, user_id, operation_type, payload, status, created_at, retry_count)
VALUES ($1, $2, $3, $4, $5, $6, 0)
RETURNING ` + opColumns

const getByIDSQL = `
SELECT ` + opColumns + `
FROM sync_operations
WHERE id = $1 AND user_id = $2`

const getSQL = `
SELECT ` + opColumns + `
FROM sync_operations
WHERE id = $1`

// claimSQL claims one specific operation (advisory dispatch path). The
// conditional WHERE makes the claim atomic: only one worker can win.
const claimSQL = `
UPDATE sync_operations
SET claimed_at = now()
WHERE id = $1 AND status = 'PENDING' AND claimed_at IS NULL
RETURNING ` + opColumns

// claimBatchSQL claims up to $2 dispatchable rows (poll path). A max_retries
// of 0 disables the cap. SKIP LOCKED keeps concurrent pollers from blocking
// on each other's candidate rows.
const claimBatchSQL = `
UPDATE sync_operations
SET claimed_at = now()
WHERE id IN (
	SELECT id FROM sync_operations
	WHERE status = 'PENDING' AND claimed_at IS NULL
	  AND ($1 = 0 OR retry_count < $1)
	ORDER BY created_at
	LIMIT $2
	FOR UPDATE SKIP LOCKED
)
RETURNING ` + opColumns

const markCompletedSQL = `
UPDATE sync_operations
SET status = 'COMPLETED', processed_at = now(), claimed_at = NULL, last_error = NULL, result = $2
WHERE id = $1 AND status = 'PENDING'`

const markRetrySQL = `
UPDATE sync_operations
SET retry_count = retry_count + 1, claimed_at = NULL, last_error = $2
WHERE id = $1 AND status = 'PENDING'`

const releaseStaleSQL = `
UPDATE sync_operations
SET claimed_at = NULL
WHERE status = 'PENDING' AND claimed_at IS NOT NULL AND claimed_at < $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an operation by primary key filtered by owning user.
// Returns domain.ErrNotFound if the row does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, opID uuid.UUID) (*domain.SyncOperation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, opID, userID)

	op, err := scanOperation(row)
	if err != nil {
		return nil, postgres.MapError(err, "sync_operation", opID.String())
	}

	return op, nil
}

// Get returns an operation by primary key without a user filter.
// Used by the processor, which is trusted internal code.
func (r *Repo) Get(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getSQL, opID)

	op, err := scanOperation(row)
	if err != nil {
		return nil, postgres.MapError(err, "sync_operation", opID.String())
	}

	return op, nil
}

// ListFilter narrows the admin listing. Zero values mean "no filter".
type ListFilter struct {
	UserID        uuid.UUID
	Status        domain.OperationStatus
	OperationType domain.OperationType
	MinRetryCount int
	Limit         int
	Offset        int
}

// List returns operations matching the filter, newest first, plus the total
// count for pagination. Built with squirrel because the filter set is dynamic.
func (r *Repo) List(ctx context.Context, filter ListFilter) ([]*domain.SyncOperation, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	pred := sq.And{}
	if filter.UserID != uuid.Nil {
		pred = append(pred, sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		pred = append(pred, sq.Eq{"status": string(filter.Status)})
	}
	if filter.OperationType != "" {
		pred = append(pred, sq.Eq{"operation_type": string(filter.OperationType)})
	}
	if filter.MinRetryCount > 0 {
		pred = append(pred, sq.GtOrEq{"retry_count": filter.MinRetryCount})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("sync_operations").Where(pred).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sync_operations: %w", err)
	}

	q := psql.Select(opColumns).
		From("sync_operations").
		Where(pred).
		OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	listSQL, listArgs, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sync_operations: %w", err)
	}
	defer rows.Close()

	ops, err := scanOperations(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list sync_operations: %w", err)
	}

	return ops, total, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Enqueue inserts a new operation at status PENDING and returns the persisted row.
func (r *Repo) Enqueue(ctx context.Context, op *domain.SyncOperation) (*domain.SyncOperation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	createdAt := op.CreatedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, enqueueSQL,
		op.ID,
		op.UserID,
		string(op.OperationType),
		op.Payload,
		string(domain.OperationStatusPending),
		createdAt,
	)

	created, err := scanOperation(row)
	if err != nil {
		return nil, postgres.MapError(err, "sync_operation", op.ID.String())
	}

	return created, nil
}

// Claim atomically claims a specific PENDING, unclaimed operation.
// Returns domain.ErrNotFound if the row is missing, already claimed,
// or already completed — callers treat that as "someone else has it".
func (r *Repo) Claim(ctx context.Context, opID uuid.UUID) (*domain.SyncOperation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, claimSQL, opID)

	op, err := scanOperation(row)
	if err != nil {
		return nil, postgres.MapError(err, "sync_operation", opID.String())
	}

	return op, nil
}

// ClaimBatch claims up to limit dispatchable operations, oldest first.
// maxRetries of 0 disables the retry cap. Returns an empty slice when
// nothing is dispatchable.
func (r *Repo) ClaimBatch(ctx context.Context, maxRetries, limit int) ([]*domain.SyncOperation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, claimBatchSQL, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("claim batch: %w", err)
	}
	defer rows.Close()

	ops, err := scanOperations(rows)
	if err != nil {
		return nil, fmt.Errorf("claim batch: %w", err)
	}

	return ops, nil
}

// MarkCompleted transitions a PENDING operation to COMPLETED, stamps
// processed_at, clears the claim, and stores the handler result summary.
// Returns domain.ErrNotFound if the row is missing or already completed.
func (r *Repo) MarkCompleted(ctx context.Context, opID uuid.UUID, result *domain.SyncResult) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var resultJSON []byte
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("sync_operation %s: marshal result: %w", opID, err)
		}
		resultJSON = b
	}

	tag, err := querier.Exec(ctx, markCompletedSQL, opID, resultJSON)
	if err != nil {
		return postgres.MapError(err, "sync_operation", opID.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync_operation %s: %w", opID, domain.ErrNotFound)
	}

	return nil
}

// MarkRetry sends a claimed operation back to the dispatchable pool:
// increments retry_count, clears the claim, records the failure reason.
// Status stays PENDING — there is no terminal failure state for admitted rows.
func (r *Repo) MarkRetry(ctx context.Context, opID uuid.UUID, reason string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markRetrySQL, opID, reason)
	if err != nil {
		return postgres.MapError(err, "sync_operation", opID.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync_operation %s: %w", opID, domain.ErrNotFound)
	}

	return nil
}

// ReleaseStale clears claims older than the threshold so the poll sweep can
// pick the rows up again. Used by the requeue maintenance command after a
// worker crash. Returns the number of released rows.
func (r *Repo) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, releaseStaleSQL, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("release stale claims: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanOperation(row pgx.Row) (*domain.SyncOperation, error) {
	var (
		op      domain.SyncOperation
		opType  string
		status  string
		payload []byte
		result  []byte
	)

	err := row.Scan(
		&op.ID,
		&op.UserID,
		&opType,
		&payload,
		&status,
		&op.CreatedAt,
		&op.ProcessedAt,
		&op.RetryCount,
		&op.ClaimedAt,
		&op.LastError,
		&result,
	)
	if err != nil {
		return nil, err
	}

	op.OperationType = domain.OperationType(opType)
	op.Status = domain.OperationStatus(status)
	op.Payload = payload
	op.Result = result

	return &op, nil
}

func scanOperations(rows pgx.Rows) ([]*domain.SyncOperation, error) {
	var ops []*domain.SyncOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}
