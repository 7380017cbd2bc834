// Package events defines the event contract shared by every module and the
// broker. Delivery is at-least-once, so handlers must tolerate duplicates
// and out-of-order arrival.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a topic, e.g. "PAYMENT_COMPLETED".
type EventType string

func (t EventType) String() string { return string(t) }

// Event is an immutable fact recorded by an aggregate.
type Event interface {
	// EventID is unique per event; consumers deduplicate on it.
	EventID() string
	EventType() EventType
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent carries the envelope fields. Contracts embed it.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// Publisher hands events to whatever sits downstream: the outbox inside a
// transaction, the broker, or the in-process bus.
type Publisher interface {
	Publish(ctx context.Context, evts ...Event) error
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Subscriber routes events of one type to a handler.
type Subscriber interface {
	Subscribe(eventType EventType, handler Handler) error
}
