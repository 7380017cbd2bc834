package commands

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// UpdateShippingAddressCommand replaces an order's shipping address. All
// address fields are required.
type UpdateShippingAddressCommand struct {
	OrderID string
	UserID  string
	Street  string
	City    string
	State   string
	PinCode string
	Country string
}

type UpdateShippingAddressHandler struct {
	orderMutator
}

func NewUpdateShippingAddressHandler(repo domain.OrderRepository, txScope transaction.Scope, handlerRegistry eventbus.HandlerRegistry) *UpdateShippingAddressHandler {
	return &UpdateShippingAddressHandler{orderMutator{repo: repo, txScope: txScope, handlerRegistry: handlerRegistry}}
}

func (h *UpdateShippingAddressHandler) Handle(ctx context.Context, cmd UpdateShippingAddressCommand) (*domain.Order, error) {
	orderID, err := parseOrderID(cmd.OrderID)
	if err != nil {
		return nil, err
	}
	requester, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}
	address, err := types.NewAddress(cmd.Street, cmd.City, cmd.State, cmd.PinCode, cmd.Country)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, orderID, func(order *domain.Order) (bool, error) {
		return true, order.UpdateShippingAddress(requester, address)
	})
}
