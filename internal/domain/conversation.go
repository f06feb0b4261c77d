package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes who produced a message.
type MessageType string

const (
	MessageTypeUser      MessageType = "USER"
	MessageTypeAssistant MessageType = "ASSISTANT"
)

func (t MessageType) String() string { return string(t) }

func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeUser, MessageTypeAssistant:
		return true
	}
	return false
}

// Conversation groups messages by user and client session. Conversations are
// created implicitly on first sync of a session.
type Conversation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SessionID string
	CreatedAt time.Time
}

// Message is one turn of a conversation. Messages are append-only history:
// once inserted they are never overwritten. ClientLocalID is the
// client-supplied identifier used as the idempotency key — within a
// conversation it is unique, so redelivering the same sync payload cannot
// create a duplicate.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	ClientLocalID  string
	Type           MessageType
	Content        string
	Annotation     json.RawMessage // optional structured analysis attached by the client
	Timestamp      time.Time
	CreatedAt      time.Time
}
