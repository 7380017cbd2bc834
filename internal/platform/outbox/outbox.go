// Package outbox implements the transactional outbox: events are written
// next to the state change that produced them and a relay forwards them to
// the broker afterwards. Delivery is at-least-once.
package outbox

import (
	"context"
	"time"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

// Message is an encoded event waiting to be relayed.
type Message struct {
	ID          string
	Type        events.EventType
	AggregateID string
	OccurredAt  time.Time
	Payload     []byte
	CreatedAt   time.Time
}

// Store persists outbox messages. Append must join the transaction carried
// by ctx when there is one.
type Store interface {
	Append(ctx context.Context, msgs ...Message) error
	// Pending returns unsent messages, oldest first.
	Pending(ctx context.Context, limit int) ([]Message, error)
	MarkSent(ctx context.Context, ids ...string) error
}

// Recorder is the in-transaction handler that turns flushed domain events
// into outbox rows.
type Recorder struct {
	store Store
	codec *eventbus.Codec
	now   func() time.Time
}

func NewRecorder(store Store, codec *eventbus.Codec) *Recorder {
	return &Recorder{store: store, codec: codec, now: time.Now}
}

// Handle implements events.Handler.
func (r *Recorder) Handle(ctx context.Context, event events.Event) error {
	payload, err := r.codec.Encode(event)
	if err != nil {
		return err
	}
	return r.store.Append(ctx, Message{
		ID:          event.EventID(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     payload,
		CreatedAt:   r.now().UTC(),
	})
}

var _ events.Handler = (*Recorder)(nil)
