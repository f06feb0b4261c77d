// Package conversation implements conversation and message persistence using
// PostgreSQL. Messages are append-only: the (conversation_id, client_local_id)
// unique constraint is the idempotency key, and inserts use ON CONFLICT DO
// NOTHING so a redelivered sync payload is a safe no-op at the database level,
// not just in handler logic.
package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/serenvoice/backend/internal/adapter/postgres"
	"github.com/serenvoice/backend/internal/domain"
)

// Repo provides conversation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const conversationColumns = `id, user_id, session_id, created_at`

// getOrCreateSQL upserts on (user_id, session_id). The no-op DO UPDATE makes
// RETURNING yield the row in both the insert and the already-exists case.
const getOrCreateSQL = `
INSERT INTO conversations (id, user_id, session_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, session_id) DO UPDATE SET session_id = EXCLUDED.session_id
RETURNING ` + conversationColumns

const messageColumns = `id, conversation_id, client_local_id, type, content, annotation, timestamp, created_at`

const insertMessageSQL = `
INSERT INTO messages (id, conversation_id, client_local_id, type, content, annotation, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (conversation_id, client_local_id) DO NOTHING`

const existsMessageSQL = `
SELECT EXISTS (
	SELECT 1 FROM messages WHERE conversation_id = $1 AND client_local_id = $2
)`

const listMessagesSQL = `
SELECT ` + messageColumns + `
FROM messages
WHERE conversation_id = $1
ORDER BY timestamp, created_at`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// GetOrCreate returns the conversation for (user, session), creating it if
// it does not exist yet. Conversations are created implicitly on first sync.
func (r *Repo) GetOrCreate(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getOrCreateSQL,
		uuid.New(),
		userID,
		sessionID,
		time.Now().UTC().Truncate(time.Microsecond),
	)

	var conv domain.Conversation
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.SessionID, &conv.CreatedAt); err != nil {
		return nil, postgres.MapError(err, "conversation", sessionID)
	}

	return &conv, nil
}

// ExistsMessage reports whether a message with the given client-local id is
// already stored in the conversation.
func (r *Repo) ExistsMessage(ctx context.Context, conversationID uuid.UUID, clientLocalID string) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, existsMessageSQL, conversationID, clientLocalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("message exists %s: %w", clientLocalID, err)
	}

	return exists, nil
}

// InsertMessage appends a message. Returns false without error when a message
// with the same client-local id already exists (idempotent redelivery).
func (r *Repo) InsertMessage(ctx context.Context, msg *domain.Message) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, insertMessageSQL,
		msg.ID,
		msg.ConversationID,
		msg.ClientLocalID,
		string(msg.Type),
		msg.Content,
		msg.Annotation,
		msg.Timestamp.UTC().Truncate(time.Microsecond),
		time.Now().UTC().Truncate(time.Microsecond),
	)
	if err != nil {
		return false, postgres.MapError(err, "message", msg.ClientLocalID)
	}

	return tag.RowsAffected() > 0, nil
}

// ListMessages returns all messages of a conversation in timeline order.
func (r *Repo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listMessagesSQL, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return msgs, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanMessages(rows pgx.Rows) ([]*domain.Message, error) {
	var msgs []*domain.Message
	for rows.Next() {
		var (
			msg        domain.Message
			msgType    string
			annotation []byte
		)
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.ClientLocalID,
			&msgType,
			&msg.Content,
			&annotation,
			&msg.Timestamp,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		msg.Type = domain.MessageType(msgType)
		msg.Annotation = annotation
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}
