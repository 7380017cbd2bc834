package commands

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
)

// ConfirmOrderCommand advances an order after its payment completed.
type ConfirmOrderCommand struct {
	OrderID string
}

type ConfirmOrderHandler struct {
	orderMutator
}

func NewConfirmOrderHandler(repo domain.OrderRepository, txScope transaction.Scope, handlerRegistry eventbus.HandlerRegistry) *ConfirmOrderHandler {
	return &ConfirmOrderHandler{orderMutator{repo: repo, txScope: txScope, handlerRegistry: handlerRegistry}}
}

// Handle confirms the order. Confirming an already confirmed order succeeds
// without writing, so redelivered payment events are harmless.
func (h *ConfirmOrderHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) (*domain.Order, error) {
	orderID, err := parseOrderID(cmd.OrderID)
	if err != nil {
		return nil, err
	}
	return h.mutate(ctx, orderID, func(order *domain.Order) (bool, error) {
		return order.Confirm()
	})
}
