package commands

import (
	"context"
	"fmt"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
)

type FulfilmentStep string

const (
	StepShip    FulfilmentStep = "ship"
	StepDeliver FulfilmentStep = "deliver"
)

// FulfilOrderCommand moves an order along the shipping path. It is issued
// by sellers and admins, so there is no ownership check.
type FulfilOrderCommand struct {
	OrderID string
	Step    FulfilmentStep
}

type FulfilOrderHandler struct {
	orderMutator
}

func NewFulfilOrderHandler(repo domain.OrderRepository, txScope transaction.Scope, handlerRegistry eventbus.HandlerRegistry) *FulfilOrderHandler {
	return &FulfilOrderHandler{orderMutator{repo: repo, txScope: txScope, handlerRegistry: handlerRegistry}}
}

func (h *FulfilOrderHandler) Handle(ctx context.Context, cmd FulfilOrderCommand) (*domain.Order, error) {
	orderID, err := parseOrderID(cmd.OrderID)
	if err != nil {
		return nil, err
	}

	var step func(*domain.Order) error
	switch cmd.Step {
	case StepShip:
		step = (*domain.Order).Ship
	case StepDeliver:
		step = (*domain.Order).Deliver
	default:
		return nil, fmt.Errorf("unknown fulfilment step %q", cmd.Step)
	}

	return h.mutate(ctx, orderID, func(order *domain.Order) (bool, error) {
		return true, step(order)
	})
}
