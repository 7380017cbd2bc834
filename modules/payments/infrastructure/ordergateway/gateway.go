// Package ordergateway adapts the orders module's public API to the
// payment orchestrator's OrderGateway port.
package ordergateway

import (
	"context"
	"fmt"

	"github.com/kunalsingh7053/VyaparX/modules/orders"
	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// OrderSource is the part of orders.Module the gateway needs.
type OrderSource interface {
	OrderSummary(ctx context.Context, orderID string) (orders.OrderSummary, error)
}

type Gateway struct {
	source OrderSource
}

func New(source OrderSource) *Gateway {
	return &Gateway{source: source}
}

func (g *Gateway) Order(ctx context.Context, id types.OrderID) (domain.Order, error) {
	summary, err := g.source.OrderSummary(ctx, id.String())
	if err != nil {
		return domain.Order{}, err
	}
	userID, err := types.ParseUserID(summary.UserID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s has invalid owner: %w", id, err)
	}
	return domain.Order{
		ID:      id,
		UserID:  userID,
		Payable: summary.IsPayable(),
		Total:   summary.Total,
	}, nil
}

var _ domain.OrderGateway = (*Gateway)(nil)
