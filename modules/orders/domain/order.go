// Package domain contains business entities and rules for orders.
package domain

import (
	"time"

	shareddomain "github.com/kunalsingh7053/VyaparX/modules/shared/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// Order is the aggregate root for the order bounded context.
type Order struct {
	shareddomain.AggregateRoot

	id              types.OrderID
	userID          types.UserID
	items           []LineItem
	shippingAddress types.Address
	status          Status
	total           types.Money
	createdAt       time.Time
	updatedAt       time.Time
}

// LineItem is one product in an order. Prices are frozen when the order is
// built and never recomputed from the catalog.
type LineItem struct {
	ProductID types.ProductID
	Title     string
	Quantity  int
	UnitPrice types.Money
	// Price is UnitPrice x Quantity.
	Price types.Money
}

// NewLineItem prices qty units of a product at unitPrice.
func NewLineItem(productID types.ProductID, title string, qty int, unitPrice types.Money) (LineItem, error) {
	if qty < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	price, err := unitPrice.Multiply(int64(qty))
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ProductID: productID,
		Title:     title,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Price:     price,
	}, nil
}

// NewOrder creates a pending order. The total is the sum of the line
// prices, all of which must share one currency.
func NewOrder(userID types.UserID, address types.Address, items []LineItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if address.IsZero() {
		return nil, types.ErrInvalidAddress
	}

	total, err := types.NewMoney(0, items[0].Price.Currency())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if total, err = total.Add(item.Price); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	o := &Order{
		id:              types.NewOrderID(),
		userID:          userID,
		items:           append([]LineItem(nil), items...),
		shippingAddress: address,
		status:          StatusPending,
		total:           total,
		createdAt:       now,
		updatedAt:       now,
	}
	o.AddDomainEvent(newOrderCreatedEvent(o))
	return o, nil
}

// Reconstitute rebuilds an order from persistence.
func Reconstitute(
	id types.OrderID,
	userID types.UserID,
	items []LineItem,
	address types.Address,
	status Status,
	total types.Money,
	createdAt, updatedAt time.Time,
	version int64,
) *Order {
	o := &Order{
		id:              id,
		userID:          userID,
		items:           items,
		shippingAddress: address,
		status:          status,
		total:           total,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
	o.SetVersion(version)
	return o
}

// Getters

func (o *Order) ID() types.OrderID              { return o.id }
func (o *Order) UserID() types.UserID           { return o.userID }
func (o *Order) Items() []LineItem              { return o.items }
func (o *Order) ShippingAddress() types.Address { return o.shippingAddress }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) Total() types.Money             { return o.total }
func (o *Order) CreatedAt() time.Time           { return o.createdAt }
func (o *Order) UpdatedAt() time.Time           { return o.updatedAt }

func (o *Order) IsOwnedBy(userID types.UserID) bool {
	return o.userID == userID
}

// Business methods

// Cancel cancels a pending order on behalf of its owner.
func (o *Order) Cancel(requester types.UserID) error {
	if !o.IsOwnedBy(requester) {
		return ErrCancelForbidden
	}
	if o.status != StatusPending {
		return ErrNotCancellable
	}
	o.transition(StatusCancelled)
	return nil
}

// UpdateShippingAddress replaces the address while the order has not
// shipped.
func (o *Order) UpdateShippingAddress(requester types.UserID, address types.Address) error {
	if !o.IsOwnedBy(requester) {
		return ErrUpdateForbidden
	}
	if o.status != StatusPending && o.status != StatusConfirmed {
		return ErrAddressNotUpdatable
	}
	if address.IsZero() {
		return types.ErrInvalidAddress
	}
	o.shippingAddress = address
	o.updatedAt = time.Now().UTC()
	return nil
}

// Confirm records a completed payment. Confirming an already confirmed
// order reports changed=false so redelivered events are absorbed.
func (o *Order) Confirm() (changed bool, err error) {
	if o.status == StatusConfirmed {
		return false, nil
	}
	if !o.status.CanTransitionTo(StatusConfirmed) {
		return false, ErrInvalidTransition
	}
	o.transition(StatusConfirmed)
	return true, nil
}

// Ship hands a confirmed order to the carrier.
func (o *Order) Ship() error {
	if o.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	o.transition(StatusShipped)
	return nil
}

func (o *Order) Deliver() error {
	if o.status != StatusShipped {
		return ErrInvalidTransition
	}
	o.transition(StatusDelivered)
	return nil
}

func (o *Order) transition(next Status) {
	old := o.status
	o.status = next
	o.updatedAt = time.Now().UTC()
	o.AddDomainEvent(newStatusChangedEvent(o, old))
}
