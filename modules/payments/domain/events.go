package domain

import (
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

func newPaymentInitiatedEvent(p *Payment) contracts.PaymentInitiatedEvent {
	return contracts.PaymentInitiatedEvent{
		BaseEvent:       events.NewBaseEvent(contracts.PaymentInitiatedEventType, p.id.String()),
		PaymentID:       p.id.String(),
		OrderID:         p.orderID.String(),
		UserID:          p.userID.String(),
		ProviderOrderID: p.providerOrderID,
		Amount:          p.price.Amount(),
		Currency:        p.price.Currency(),
		Status:          p.status.String(),
	}
}

func newPaymentCompletedEvent(p *Payment, email string) contracts.PaymentCompletedEvent {
	return contracts.PaymentCompletedEvent{
		BaseEvent:         events.NewBaseEvent(contracts.PaymentCompletedEventType, p.id.String()),
		PaymentID:         p.id.String(),
		OrderID:           p.orderID.String(),
		UserID:            p.userID.String(),
		Email:             email,
		ProviderOrderID:   p.providerOrderID,
		ProviderPaymentID: p.providerPaymentID,
		Amount:            p.price.Amount(),
		Currency:          p.price.Currency(),
	}
}

// FailureDetails is whatever is known about a callback that could not be
// verified.
type FailureDetails struct {
	Payment           *Payment
	UserID            string
	Email             string
	ProviderOrderID   string
	ProviderPaymentID string
	Reason            string
}

// NewPaymentFailedEvent builds the event published when verification fails.
// It is not raised on the aggregate: nothing is committed alongside it.
func NewPaymentFailedEvent(d FailureDetails) contracts.PaymentFailedEvent {
	evt := contracts.PaymentFailedEvent{
		UserID:            d.UserID,
		Email:             d.Email,
		ProviderOrderID:   d.ProviderOrderID,
		ProviderPaymentID: d.ProviderPaymentID,
		Reason:            d.Reason,
	}
	aggregateID := d.ProviderOrderID
	if d.Payment != nil {
		evt.PaymentID = d.Payment.id.String()
		evt.OrderID = d.Payment.orderID.String()
		aggregateID = evt.PaymentID
	}
	evt.BaseEvent = events.NewBaseEvent(contracts.PaymentFailedEventType, aggregateID)
	return evt
}
