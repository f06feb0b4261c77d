package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BaselineType identifies which per-user risk baseline a row holds.
type BaselineType string

const (
	BaselineTypeVoice   BaselineType = "voice"
	BaselineTypeEmotion BaselineType = "emotion"
	BaselineTypeRisk    BaselineType = "risk"
)

func (t BaselineType) String() string { return string(t) }

func (t BaselineType) IsValid() bool {
	switch t {
	case BaselineTypeVoice, BaselineTypeEmotion, BaselineTypeRisk:
		return true
	}
	return false
}

// UserBaseline is the single live baseline row per (user, baseline type).
// It is mutable state: updates go through last-write-wins resolution against
// the stored row, never a blind overwrite.
type UserBaseline struct {
	UserID       uuid.UUID
	BaselineType BaselineType
	Value        json.RawMessage
	UpdatedAt    *time.Time // nil when the client supplied no timestamp
}

// UserPreferences is the single mutable preferences blob per user, merged
// under the same last-write-wins rules as UserBaseline.
type UserPreferences struct {
	UserID    uuid.UUID
	Value     json.RawMessage
	UpdatedAt *time.Time
}
