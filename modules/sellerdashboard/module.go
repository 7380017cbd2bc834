// Package sellerdashboard maintains event-driven projections of users,
// products, orders and payments for the seller dashboard.
package sellerdashboard

import (
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/sellerdashboard/application/projections"
	"github.com/kunalsingh7053/VyaparX/modules/sellerdashboard/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

// Module has no HTTP surface in this repository; the dashboard's query
// endpoints read the projections directly.
type Module struct{}

type Config struct {
	Store           domain.ProjectionStore
	EventSubscriber events.Subscriber
	Logger          *slog.Logger
}

func New(cfg Config) (*Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "sellerdashboard")

	projector := projections.NewProjector(cfg.Store, logger)
	for _, eventType := range projections.EventTypes {
		if err := cfg.EventSubscriber.Subscribe(eventType, projector); err != nil {
			return nil, fmt.Errorf("subscribing to %s: %w", eventType, err)
		}
	}
	return &Module{}, nil
}
