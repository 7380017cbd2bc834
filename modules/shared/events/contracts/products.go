package contracts

import "github.com/kunalsingh7053/VyaparX/modules/shared/events"

// Produced by the product service; consumed by the seller dashboard.
const (
	ProductCreatedEventType events.EventType = "PRODUCT_CREATED"
)

type ProductCreatedEvent struct {
	events.BaseEvent
	ProductID   string `json:"product_id"`
	SellerID    string `json:"seller_id"`
	Title       string `json:"title"`
	PriceAmount int64  `json:"price_amount"`
	Currency    string `json:"currency"`
	Stock       int    `json:"stock"`
}
