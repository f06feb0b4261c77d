package sync

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/serenvoice/backend/internal/domain"
)

// Validator gatekeeps operations before they enter the durable queue.
// It is stateless and side-effect free: every decision derives from the
// inputs alone. A failed validation never produces a queue row.
//
// Failures and warnings are distinct outcomes. A failure rejects the
// operation at admission. A warning admits the operation and flags a minor
// anomaly (for example a message without content) that the processor will
// later record as a per-item failure instead of aborting the batch.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a candidate operation's shape, actor permission, and
// internal consistency. On success it returns the parsed operation type and
// any warnings; on failure it returns a *domain.ValidationError naming the
// offending field.
func (v *Validator) Validate(actorID uuid.UUID, opType string, payload json.RawMessage) (domain.OperationType, []string, error) {
	if actorID == uuid.Nil {
		return "", nil, domain.NewValidationError("user_id", "required")
	}

	// Closed set of operation types: anything else never enters the queue.
	typ := domain.OperationType(opType)
	if !typ.IsValid() {
		return "", nil, domain.NewValidationError("operation_type", fmt.Sprintf("unsupported operation type %q", opType))
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(payload, &data); err != nil {
		return "", nil, domain.NewValidationError("data", "must be a JSON object")
	}

	// If the payload embeds its own actor reference it must match the
	// authenticated actor.
	if raw, ok := data["user_id"]; ok {
		var embedded string
		if err := json.Unmarshal(raw, &embedded); err != nil || embedded != actorID.String() {
			return "", nil, domain.NewValidationError("user_id", "does not match authenticated user")
		}
	}

	var warnings []string
	var err error

	switch typ {
	case domain.OperationTypeConversationSync:
		warnings, err = v.validateConversationSync(data)
	case domain.OperationTypeEmotionDataSync:
		warnings, err = v.validateEmotionDataSync(data)
	case domain.OperationTypeBaselineUpdate:
		err = v.validateBaselineUpdate(data)
	case domain.OperationTypePreferenceSync:
		err = v.validatePreferenceSync(data)
	}
	if err != nil {
		return "", nil, err
	}

	return typ, warnings, nil
}

func (v *Validator) validateConversationSync(data map[string]json.RawMessage) ([]string, error) {
	var conversationID string
	if raw, ok := data["conversation_id"]; ok {
		_ = json.Unmarshal(raw, &conversationID)
	}
	if conversationID == "" {
		return nil, domain.NewValidationError("conversation_id", "required")
	}

	raw, ok := data["messages"]
	if !ok {
		return nil, domain.NewValidationError("messages", "required")
	}

	var messages []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, domain.NewValidationError("messages", "must be a list")
	}

	var warnings []string
	for i, msg := range messages {
		var id string
		if rawID, ok := msg["id"]; ok {
			_ = json.Unmarshal(rawID, &id)
		}
		if id == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("messages[%d].id", i), "required")
		}
		// Missing content is a per-item anomaly, not an admission failure:
		// the processor counts it as a failed item and continues the batch.
		if _, ok := msg["content"]; !ok {
			warnings = append(warnings, fmt.Sprintf("messages[%d]: missing content", i))
		}
	}

	return warnings, nil
}

func (v *Validator) validateEmotionDataSync(data map[string]json.RawMessage) ([]string, error) {
	raw, ok := data["emotion_data"]
	if !ok {
		return nil, domain.NewValidationError("emotion_data", "required")
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, domain.NewValidationError("emotion_data", "must be a list")
	}

	var warnings []string
	for i, rec := range records {
		if _, ok := rec["metrics"]; !ok {
			warnings = append(warnings, fmt.Sprintf("emotion_data[%d]: missing metrics", i))
		}
	}

	return warnings, nil
}

func (v *Validator) validateBaselineUpdate(data map[string]json.RawMessage) error {
	raw, ok := data["baseline_data"]
	if !ok {
		return domain.NewValidationError("baseline_data", "required")
	}

	var baseline map[string]json.RawMessage
	if err := json.Unmarshal(raw, &baseline); err != nil {
		return domain.NewValidationError("baseline_data", "must be a mapping")
	}

	var bt string
	if rawType, ok := baseline["baseline_type"]; ok {
		_ = json.Unmarshal(rawType, &bt)
	}
	if bt == "" {
		return domain.NewValidationError("baseline_data.baseline_type", "required")
	}
	if !domain.BaselineType(bt).IsValid() {
		return domain.NewValidationError("baseline_data.baseline_type", fmt.Sprintf("unknown baseline type %q", bt))
	}

	return nil
}

func (v *Validator) validatePreferenceSync(data map[string]json.RawMessage) error {
	raw, ok := data["preferences"]
	if !ok {
		return domain.NewValidationError("preferences", "required")
	}

	var prefs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return domain.NewValidationError("preferences", "must be a mapping")
	}

	return nil
}
