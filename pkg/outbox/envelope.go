package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef names who caused the event. Optional: system-driven events
// (publisher retries, migrations) carry no actor.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Group  string    `json:"group,omitempty"`
}

// PayloadEnvelope is the wire shape stored in outbox_events.payload and
// shipped verbatim to Pub/Sub. Consumers unmarshal Data by event type.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// newEnvelope wraps marshaled event data, minting the event id and
// defaulting OccurredAt to now.
func newEnvelope(event DomainEvent, data json.RawMessage) PayloadEnvelope {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: occurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
}
