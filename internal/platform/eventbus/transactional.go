package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

var tracer = otel.Tracer("github.com/kunalsingh7053/VyaparX/internal/platform/eventbus")

// ErrEventProcessingDepthExceeded is returned when handlers keep publishing
// follow-up events past the configured depth.
var ErrEventProcessingDepthExceeded = errors.New("event processing depth exceeded")

// TransactionalEventBus buffers the events of one unit of work and hands
// them to the registry's handlers (the outbox recorder, in practice) on
// Flush, inside the same transaction as the aggregate write.
//
// Create one per transaction attempt, inside the closure given to the
// scope: Spanner re-runs the closure on Aborted and the buffer must start
// empty each time.
//
//	txScope.Execute(ctx, func(ctx context.Context) error {
//	    bus := eventbus.NewTransactional(registry, 10)
//	    if err := repo.Save(ctx, order); err != nil {
//	        return err
//	    }
//	    if err := bus.Publish(ctx, order.DomainEvents()...); err != nil {
//	        return err
//	    }
//	    return bus.Flush(ctx)
//	})
type TransactionalEventBus struct {
	registry HandlerRegistry
	maxDepth int

	mu      sync.Mutex
	pending []events.Event
}

// NewTransactional returns an empty bus. maxDepth bounds how many events a
// single Flush dispatches, including ones published by handlers; values
// <= 0 mean 10.
func NewTransactional(registry HandlerRegistry, maxDepth int) *TransactionalEventBus {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return &TransactionalEventBus{
		registry: registry,
		maxDepth: maxDepth,
	}
}

// Publish buffers evts. Nothing is dispatched until Flush.
func (b *TransactionalEventBus) Publish(ctx context.Context, evts ...events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, evts...)
	return nil
}

// Flush dispatches buffered events in publish order. The first handler
// error stops the flush and is returned so the caller's transaction rolls
// back.
func (b *TransactionalEventBus) Flush(ctx context.Context) error {
	for dispatched := 0; ; dispatched++ {
		event, ok := b.next()
		if !ok {
			return nil
		}
		if dispatched >= b.maxDepth {
			return ErrEventProcessingDepthExceeded
		}
		if err := b.dispatch(ctx, event); err != nil {
			return err
		}
	}
}

func (b *TransactionalEventBus) next() (events.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil, false
	}
	event := b.pending[0]
	b.pending = b.pending[1:]
	return event, true
}

// dispatch runs without the lock held so handlers may Publish follow-ups.
func (b *TransactionalEventBus) dispatch(ctx context.Context, event events.Event) error {
	ctx, span := tracer.Start(ctx, "eventbus.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.type", event.EventType().String()),
		attribute.String("event.id", event.EventID()),
		attribute.String("event.aggregate_id", event.AggregateID()),
	)

	for _, handler := range b.registry.HandlersFor(event.EventType()) {
		if err := handler.Handle(ctx, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler failed")
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// PendingCount returns the number of buffered events.
func (b *TransactionalEventBus) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

var _ events.Publisher = (*TransactionalEventBus)(nil)
