package eventbus

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

// HandlerRegistry is what TransactionalEventBus dispatches through.
type HandlerRegistry interface {
	HandlersFor(eventType events.EventType) []events.Handler
}

// EventHandlerRegistry holds the handlers that run inside the command's
// transaction, chiefly the outbox recorder. Cross-service consumers do not
// register here; they subscribe to the broker.
type EventHandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]events.Handler
	logger   *slog.Logger
}

func NewEventHandlerRegistry(logger *slog.Logger) *EventHandlerRegistry {
	return &EventHandlerRegistry{
		handlers: make(map[events.EventType][]events.Handler),
		logger:   logger,
	}
}

// Subscribe is meant for wiring time; the registry is read-mostly afterwards.
func (r *EventHandlerRegistry) Subscribe(eventType events.EventType, handler events.Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[eventType] = append(r.handlers[eventType], handler)
	r.logger.Debug("registered transactional handler", slog.String("event_type", eventType.String()))
	return nil
}

// SubscribeAll registers handler for every listed event type.
func (r *EventHandlerRegistry) SubscribeAll(handler events.Handler, eventTypes ...events.EventType) error {
	for _, eventType := range eventTypes {
		if err := r.Subscribe(eventType, handler); err != nil {
			return err
		}
	}
	return nil
}

// HandlersFor returns a snapshot; later subscriptions do not affect it.
func (r *EventHandlerRegistry) HandlersFor(eventType events.EventType) []events.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.handlers[eventType])
}

var (
	_ events.Subscriber = (*EventHandlerRegistry)(nil)
	_ HandlerRegistry   = (*EventHandlerRegistry)(nil)
)
