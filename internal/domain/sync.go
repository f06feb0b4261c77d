package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OperationStatus represents the lifecycle state of a queued sync operation.
// There is no terminal failure state for admitted operations: once a row is
// admitted it either completes or stays PENDING for a later attempt.
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "PENDING"
	OperationStatusCompleted OperationStatus = "COMPLETED"
)

func (s OperationStatus) String() string { return string(s) }

func (s OperationStatus) IsValid() bool {
	switch s {
	case OperationStatusPending, OperationStatusCompleted:
		return true
	}
	return false
}

// OperationType is the closed set of sync operation kinds. Anything outside
// this set is rejected at admission and never reaches the queue.
type OperationType string

const (
	OperationTypeConversationSync OperationType = "conversation_sync"
	OperationTypeEmotionDataSync  OperationType = "emotion_data_sync"
	OperationTypeBaselineUpdate   OperationType = "baseline_update"
	OperationTypePreferenceSync   OperationType = "user_preference_sync"
)

func (t OperationType) String() string { return string(t) }

func (t OperationType) IsValid() bool {
	switch t {
	case OperationTypeConversationSync, OperationTypeEmotionDataSync,
		OperationTypeBaselineUpdate, OperationTypePreferenceSync:
		return true
	}
	return false
}

// SyncOperation is a queue row: one client-submitted operation and its
// processing bookkeeping. The payload is opaque to the queue itself; only the
// per-type handlers interpret it.
type SyncOperation struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	OperationType OperationType
	Payload       json.RawMessage
	Status        OperationStatus
	CreatedAt     time.Time
	ProcessedAt   *time.Time // set only when Status is COMPLETED
	RetryCount    int
	ClaimedAt     *time.Time // set while a worker holds the row
	LastError     *string
	Result        json.RawMessage // handler result summary, set on completion
}

// SyncResult summarizes the outcome of processing one operation. Per-item
// failures inside a batch are counted here, not surfaced as errors.
type SyncResult struct {
	MessagesInserted int  `json:"messages_inserted,omitempty"`
	MessagesSkipped  int  `json:"messages_skipped,omitempty"`
	MessagesFailed   int  `json:"messages_failed,omitempty"`
	RecordsInserted  int  `json:"records_inserted,omitempty"`
	RecordsSkipped   int  `json:"records_skipped,omitempty"`
	RecordsFailed    int  `json:"records_failed,omitempty"`
	Applied          bool `json:"applied,omitempty"` // merge handlers: remote version won
}
