package domain

import (
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

func newOrderCreatedEvent(o *Order) contracts.OrderCreatedEvent {
	lines := make([]contracts.OrderLine, 0, len(o.items))
	for _, item := range o.items {
		lines = append(lines, contracts.OrderLine{
			ProductID: item.ProductID.String(),
			Title:     item.Title,
			Quantity:  item.Quantity,
			Amount:    item.Price.Amount(),
			Currency:  item.Price.Currency(),
		})
	}

	addr := o.shippingAddress
	return contracts.OrderCreatedEvent{
		BaseEvent:   events.NewBaseEvent(contracts.OrderCreatedEventType, o.id.String()),
		OrderID:     o.id.String(),
		UserID:      o.userID.String(),
		Items:       lines,
		TotalAmount: o.total.Amount(),
		Currency:    o.total.Currency(),
		Status:      o.status.String(),
		ShippingAddress: contracts.ShippingAddress{
			Street:  addr.Street(),
			City:    addr.City(),
			State:   addr.State(),
			PinCode: addr.PinCode(),
			Country: addr.Country(),
		},
	}
}

func newStatusChangedEvent(o *Order, old Status) contracts.OrderStatusChangedEvent {
	return contracts.OrderStatusChangedEvent{
		BaseEvent: events.NewBaseEvent(contracts.OrderStatusChangedEventType, o.id.String()),
		OrderID:   o.id.String(),
		UserID:    o.userID.String(),
		OldStatus: old.String(),
		NewStatus: o.status.String(),
	}
}
