package commands

import (
	"context"
	"fmt"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// orderMutator runs load-change-save against one order inside a
// transaction. The repository's version check turns a concurrent writer
// into types.ErrConcurrentUpdate instead of a lost update.
type orderMutator struct {
	repo            domain.OrderRepository
	txScope         transaction.Scope
	handlerRegistry eventbus.HandlerRegistry
}

func parseOrderID(s string) (types.OrderID, error) {
	id, err := types.ParseOrderID(s)
	if err != nil {
		return types.OrderID{}, domain.ErrInvalidOrderID
	}
	return id, nil
}

// mutate applies change to the stored order. change reports whether it
// modified the order; unchanged orders are not written.
func (m orderMutator) mutate(ctx context.Context, id types.OrderID, change func(*domain.Order) (bool, error)) (*domain.Order, error) {
	return transaction.ExecuteWithResult(ctx, m.txScope, func(ctx context.Context) (*domain.Order, error) {
		// Create event bus inside closure for Spanner retry safety
		eventBus := eventbus.NewTransactional(m.handlerRegistry, 10)

		order, err := m.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("finding order: %w", err)
		}

		changed, err := change(order)
		if err != nil {
			return nil, err
		}
		if !changed {
			return order, nil
		}

		if err := m.repo.Save(ctx, order); err != nil {
			return nil, fmt.Errorf("saving order: %w", err)
		}

		if err := eventBus.Publish(ctx, order.PopDomainEvents()...); err != nil {
			return nil, fmt.Errorf("publishing events: %w", err)
		}

		if err := eventBus.Flush(ctx); err != nil {
			return nil, fmt.Errorf("flushing events: %w", err)
		}
		return order, nil
	})
}
