// Package notifications sends transactional emails in response to events
// from other services and modules.
package notifications

import (
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/notifications/application/eventhandlers"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/application/templates"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

// Module represents the notification module entry point.
// It has no HTTP surface; it only consumes events.
type Module struct{}

type Config struct {
	EventSubscriber events.Subscriber
	Mailer          domain.Mailer
	Logger          *slog.Logger
}

// New initializes the notification module and subscribes to events.
func New(cfg Config) (*Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "notifications")

	renderer, err := templates.New()
	if err != nil {
		return nil, err
	}

	subscriptions := map[events.EventType]events.Handler{
		contracts.UserCreatedEventType:      eventhandlers.NewUserCreatedHandler(cfg.Mailer, renderer, logger),
		contracts.PaymentCompletedEventType: eventhandlers.NewPaymentCompletedHandler(cfg.Mailer, renderer, logger),
		contracts.PaymentFailedEventType:    eventhandlers.NewPaymentFailedHandler(cfg.Mailer, renderer, logger),
	}
	for eventType, handler := range subscriptions {
		if err := cfg.EventSubscriber.Subscribe(eventType, handler); err != nil {
			return nil, fmt.Errorf("subscribing to %s: %w", eventType, err)
		}
	}

	return &Module{}, nil
}
