package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is bumped when a consumer-visible field changes meaning.
const EnvelopeVersion = 1

// ErrInvalidEnvelope marks a stored payload that consumers could not make sense of.
var ErrInvalidEnvelope = errors.New("invalid outbox envelope")

// ActorRef identifies who produced the event. System actors (the expiry sweep) have a nil UserID.
type ActorRef struct {
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Role   string     `json:"role,omitempty"`
}

// PayloadEnvelope is stored in outbox_events.payload and published byte for byte.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload and checks the fields every consumer relies on.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	switch {
	case env.Version < 1 || env.Version > EnvelopeVersion:
		return env, fmt.Errorf("%w: unsupported version %d", ErrInvalidEnvelope, env.Version)
	case env.EventID == "":
		return env, fmt.Errorf("%w: missing event_id", ErrInvalidEnvelope)
	case env.EventType == "":
		return env, fmt.Errorf("%w: missing event_type", ErrInvalidEnvelope)
	}
	return env, nil
}
