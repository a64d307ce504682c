// Package outbox spools action-log events that the broker refused and
// replays them later.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
)

// Message is a spooled event.
type Message struct {
	ID             int64
	EventID        uuid.UUID
	RoutingKey     string
	Payload        []byte
	CreatedAt      time.Time
	RetryCount     int
	NextRetryAt    *time.Time
	LastError      string
	DeadLetteredAt *time.Time
}

// NewMessage spools payload under routingKey. The event id is taken from
// the payload when it is an envelope so replays stay deduplicated.
func NewMessage(routingKey string, payload []byte) *Message {
	msg := &Message{
		RoutingKey: routingKey,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}

	var env eventbus.Envelope
	if err := json.Unmarshal(payload, &env); err == nil && env.EventID != uuid.Nil {
		msg.EventID = env.EventID
	} else {
		msg.EventID = uuid.New()
	}
	return msg
}

// IsDead reports whether the message was given up on.
func (m *Message) IsDead() bool {
	return m.DeadLetteredAt != nil
}
