// Package projections turns events into seller dashboard read models.
package projections

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/sellerdashboard/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

// EventTypes lists the topics the projector consumes.
var EventTypes = []events.EventType{
	contracts.UserCreatedEventType,
	contracts.ProductCreatedEventType,
	contracts.OrderCreatedEventType,
	contracts.OrderStatusChangedEventType,
	contracts.PaymentInitiatedEventType,
	contracts.PaymentCompletedEventType,
}

// Projector applies each event as an upsert stamped with the event's
// timestamp. Replays and out-of-order deliveries are absorbed by the store.
type Projector struct {
	store  domain.ProjectionStore
	logger *slog.Logger
}

func NewProjector(store domain.ProjectionStore, logger *slog.Logger) *Projector {
	return &Projector{store: store, logger: logger}
}

func (p *Projector) Handle(ctx context.Context, event events.Event) error {
	p.logger.Debug("projecting event",
		slog.String("event_type", event.EventType().String()),
		slog.String("event_id", event.EventID()),
		slog.String("aggregate_id", event.AggregateID()))

	at := event.OccurredAt()

	switch e := event.(type) {
	case contracts.UserCreatedEvent:
		return p.store.UpsertUser(ctx, domain.User{
			ID:        e.UserID,
			Email:     e.Email,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Role:      e.Role,
			UpdatedAt: at,
		})

	case contracts.ProductCreatedEvent:
		return p.store.UpsertProduct(ctx, domain.Product{
			ID:        e.ProductID,
			SellerID:  e.SellerID,
			Title:     e.Title,
			Price:     e.PriceAmount,
			Currency:  e.Currency,
			Stock:     e.Stock,
			UpdatedAt: at,
		})

	case contracts.OrderCreatedEvent:
		items := make([]domain.OrderItem, 0, len(e.Items))
		for _, line := range e.Items {
			items = append(items, domain.OrderItem{
				ProductID: line.ProductID,
				Title:     line.Title,
				Quantity:  line.Quantity,
				Amount:    line.Amount,
				Currency:  line.Currency,
			})
		}
		return p.store.UpsertOrder(ctx, domain.Order{
			ID:          e.OrderID,
			UserID:      e.UserID,
			Items:       items,
			TotalAmount: e.TotalAmount,
			Currency:    e.Currency,
			Status:      e.Status,
			StatusAt:    at,
		})

	case contracts.OrderStatusChangedEvent:
		return p.store.UpdateOrderStatus(ctx, e.OrderID, e.UserID, e.NewStatus, at)

	case contracts.PaymentInitiatedEvent:
		return p.store.UpsertPayment(ctx, domain.Payment{
			ID:              e.PaymentID,
			OrderID:         e.OrderID,
			UserID:          e.UserID,
			ProviderOrderID: e.ProviderOrderID,
			Amount:          e.Amount,
			Currency:        e.Currency,
			Status:          e.Status,
			StatusAt:        at,
		})

	case contracts.PaymentCompletedEvent:
		return p.store.UpsertPayment(ctx, domain.Payment{
			ID:                e.PaymentID,
			OrderID:           e.OrderID,
			UserID:            e.UserID,
			ProviderOrderID:   e.ProviderOrderID,
			ProviderPaymentID: e.ProviderPaymentID,
			Amount:            e.Amount,
			Currency:          e.Currency,
			Status:            "completed",
			StatusAt:          at,
		})

	default:
		return fmt.Errorf("unexpected event type: %T", event)
	}
}
