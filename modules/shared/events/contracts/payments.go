package contracts

import "github.com/kunalsingh7053/VyaparX/modules/shared/events"

const (
	PaymentInitiatedEventType events.EventType = "PAYMENT_INITIATED"
	PaymentCompletedEventType events.EventType = "PAYMENT_COMPLETED"
	PaymentFailedEventType    events.EventType = "PAYMENT_FAILED"
)

type PaymentInitiatedEvent struct {
	events.BaseEvent
	PaymentID       string `json:"payment_id"`
	OrderID         string `json:"order_id"`
	UserID          string `json:"user_id"`
	ProviderOrderID string `json:"provider_order_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

// PaymentCompletedEvent triggers order confirmation and the success email.
type PaymentCompletedEvent struct {
	events.BaseEvent
	PaymentID         string `json:"payment_id"`
	OrderID           string `json:"order_id"`
	UserID            string `json:"user_id"`
	Email             string `json:"email"`
	ProviderOrderID   string `json:"provider_order_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
}

// PaymentFailedEvent carries whatever identifying data was available when
// verification failed; any field but Reason may be empty.
type PaymentFailedEvent struct {
	events.BaseEvent
	PaymentID         string `json:"payment_id,omitempty"`
	OrderID           string `json:"order_id,omitempty"`
	UserID            string `json:"user_id,omitempty"`
	Email             string `json:"email,omitempty"`
	ProviderOrderID   string `json:"provider_order_id,omitempty"`
	ProviderPaymentID string `json:"provider_payment_id,omitempty"`
	Reason            string `json:"reason"`
}
