package commands

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// CancelOrderCommand cancels a pending order on behalf of its owner.
type CancelOrderCommand struct {
	OrderID string
	UserID  string
}

type CancelOrderHandler struct {
	orderMutator
}

func NewCancelOrderHandler(repo domain.OrderRepository, txScope transaction.Scope, handlerRegistry eventbus.HandlerRegistry) *CancelOrderHandler {
	return &CancelOrderHandler{orderMutator{repo: repo, txScope: txScope, handlerRegistry: handlerRegistry}}
}

func (h *CancelOrderHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	orderID, err := parseOrderID(cmd.OrderID)
	if err != nil {
		return nil, err
	}
	requester, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}

	return h.mutate(ctx, orderID, func(order *domain.Order) (bool, error) {
		return true, order.Cancel(requester)
	})
}
