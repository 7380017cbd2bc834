package contracts

import "github.com/kunalsingh7053/VyaparX/modules/shared/events"

const (
	OrderCreatedEventType       events.EventType = "ORDER_CREATED"
	OrderStatusChangedEventType events.EventType = "ORDER_STATUS_CHANGED"
)

// OrderLine is the denormalized line item carried by order events.
// Amount is the frozen line total in minor units.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pin_code"`
	Country string `json:"country"`
}

type OrderCreatedEvent struct {
	events.BaseEvent
	OrderID         string          `json:"order_id"`
	UserID          string          `json:"user_id"`
	Items           []OrderLine     `json:"items"`
	TotalAmount     int64           `json:"total_amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

type OrderStatusChangedEvent struct {
	events.BaseEvent
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
