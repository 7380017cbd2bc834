// Package domain contains the payment aggregate and the ports the payment
// orchestrator depends on.
package domain

import (
	"time"

	shareddomain "github.com/kunalsingh7053/VyaparX/modules/shared/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// Payment is the aggregate root for one attempt to pay an order. The price
// is copied from the order when the payment is initiated.
type Payment struct {
	shareddomain.AggregateRoot
	id                types.PaymentID
	orderID           types.OrderID
	userID            types.UserID
	providerOrderID   string
	providerPaymentID string
	signature         string
	status            Status
	price             types.Money
	createdAt         time.Time
	updatedAt         time.Time
}

// NewPayment records a pending payment for a provider intent.
func NewPayment(orderID types.OrderID, userID types.UserID, providerOrderID string, price types.Money) *Payment {
	now := time.Now().UTC()
	p := &Payment{
		id:              types.NewPaymentID(),
		orderID:         orderID,
		userID:          userID,
		providerOrderID: providerOrderID,
		status:          StatusPending,
		price:           price,
		createdAt:       now,
		updatedAt:       now,
	}
	p.AddDomainEvent(newPaymentInitiatedEvent(p))
	return p
}

// Reconstitute recreates a Payment from persistence.
func Reconstitute(
	id types.PaymentID,
	orderID types.OrderID,
	userID types.UserID,
	providerOrderID, providerPaymentID, signature string,
	status Status,
	price types.Money,
	createdAt, updatedAt time.Time,
	version int64,
) *Payment {
	p := &Payment{
		id:                id,
		orderID:           orderID,
		userID:            userID,
		providerOrderID:   providerOrderID,
		providerPaymentID: providerPaymentID,
		signature:         signature,
		status:            status,
		price:             price,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
	p.SetVersion(version)
	return p
}

func (p *Payment) ID() types.PaymentID       { return p.id }
func (p *Payment) OrderID() types.OrderID    { return p.orderID }
func (p *Payment) UserID() types.UserID      { return p.userID }
func (p *Payment) ProviderOrderID() string   { return p.providerOrderID }
func (p *Payment) ProviderPaymentID() string { return p.providerPaymentID }
func (p *Payment) Signature() string         { return p.signature }
func (p *Payment) Status() Status            { return p.status }
func (p *Payment) Price() types.Money        { return p.price }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time      { return p.updatedAt }

func (p *Payment) IsOwnedBy(userID types.UserID) bool {
	return p.userID == userID
}

// IsCompletedBy reports whether the payment was already completed by the
// given provider payment. Such a callback is a replay.
func (p *Payment) IsCompletedBy(providerPaymentID string) bool {
	return p.status == StatusCompleted && p.providerPaymentID == providerPaymentID
}

// Complete records the verified provider confirmation. email is carried on
// the event for the receipt notification.
func (p *Payment) Complete(providerPaymentID, signature, email string) error {
	if p.status != StatusPending {
		return ErrNotPending
	}
	p.providerPaymentID = providerPaymentID
	p.signature = signature
	p.status = StatusCompleted
	p.updatedAt = time.Now().UTC()
	p.AddDomainEvent(newPaymentCompletedEvent(p, email))
	return nil
}
