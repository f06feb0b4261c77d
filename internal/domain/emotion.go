package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmotionRecord is one voice-emotion observation. Records are append-only and
// idempotent by DedupeKey: the same observation synced twice stores one row.
type EmotionRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	DedupeKey  string
	RecordedAt time.Time
	Metrics    json.RawMessage
	CreatedAt  time.Time
}

// EmotionDedupeKey derives the stable dedupe key for an observation. Clients
// that supply their own id get it verbatim; otherwise the key is a hash of
// the observation's client-supplied identity (user, recorded_at if present,
// metrics content). Only identity the client sent goes into the hash: a
// server-side clock would give a redelivered observation a fresh key.
func EmotionDedupeKey(userID uuid.UUID, clientID string, recordedAt *time.Time, metrics json.RawMessage) string {
	if clientID != "" {
		return clientID
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|", userID)
	if recordedAt != nil {
		fmt.Fprintf(h, "%d", recordedAt.UnixMilli())
	}
	h.Write([]byte("|"))
	h.Write(metrics)
	return hex.EncodeToString(h.Sum(nil))
}
