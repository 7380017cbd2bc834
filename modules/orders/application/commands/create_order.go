// Package commands contains write use cases for the orders module.
package commands

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

var tracer = otel.Tracer("github.com/kunalsingh7053/VyaparX/modules/orders")

// maxConcurrentLookups bounds catalog requests per order.
const maxConcurrentLookups = 8

// CreateOrderCommand builds an order from the user's cart.
type CreateOrderCommand struct {
	UserID  string
	Street  string
	City    string
	State   string
	PinCode string
	Country string
}

type CreateOrderHandler struct {
	repo            domain.OrderRepository
	txScope         transaction.Scope
	handlerRegistry eventbus.HandlerRegistry
	cart            domain.CartProvider
	catalog         domain.CatalogGateway
}

func NewCreateOrderHandler(
	repo domain.OrderRepository,
	txScope transaction.Scope,
	handlerRegistry eventbus.HandlerRegistry,
	cart domain.CartProvider,
	catalog domain.CatalogGateway,
) *CreateOrderHandler {
	return &CreateOrderHandler{
		repo:            repo,
		txScope:         txScope,
		handlerRegistry: handlerRegistry,
		cart:            cart,
		catalog:         catalog,
	}
}

// Handle reconciles the cart against the catalog and persists a pending
// order. Either the whole order is written or nothing is: the address is
// validated before any upstream call, and every line must be in stock.
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (order *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "orders.CreateOrder")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, types.Code(err))
		}
		span.End()
	}()

	userID, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}

	address, err := types.NewAddress(cmd.Street, cmd.City, cmd.State, cmd.PinCode, cmd.Country)
	if err != nil {
		return nil, err
	}

	cart, err := h.cart.Cart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching cart: %w", err)
	}
	lines, err := mergeCartLines(cart)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	span.SetAttributes(attribute.Int("order.distinct_products", len(lines)))

	products, err := h.lookupProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(lines))
	for i, line := range lines {
		product := products[i]
		if product.Stock < line.Quantity {
			return nil, &domain.InsufficientStockError{
				Title:     product.Title,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}
		item, err := domain.NewLineItem(line.ProductID, product.Title, line.Quantity, product.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	order, err = domain.NewOrder(userID, address, items)
	if err != nil {
		return nil, err
	}

	err = h.txScope.Execute(ctx, func(ctx context.Context) error {
		// Create event bus inside closure for Spanner retry safety
		eventBus := eventbus.NewTransactional(h.handlerRegistry, 10)

		if err := h.repo.Save(ctx, order); err != nil {
			return fmt.Errorf("saving order: %w", err)
		}
		if err := eventBus.Publish(ctx, order.DomainEvents()...); err != nil {
			return fmt.Errorf("publishing events: %w", err)
		}
		return eventBus.Flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	order.PopDomainEvents()

	span.SetAttributes(attribute.String("order.id", order.ID().String()))
	return order, nil
}

// lookupProducts fetches every product concurrently. The first failure
// cancels the remaining lookups and is returned.
func (h *CreateOrderHandler) lookupProducts(ctx context.Context, lines []domain.CartLine) ([]domain.Product, error) {
	products := make([]domain.Product, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, line := range lines {
		g.Go(func() error {
			p, err := h.catalog.Product(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("looking up product %s: %w", line.ProductID, err)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

// mergeCartLines sums quantities of repeated products, keeping first-seen
// order.
func mergeCartLines(cart []domain.CartLine) ([]domain.CartLine, error) {
	index := make(map[types.ProductID]int, len(cart))
	merged := make([]domain.CartLine, 0, len(cart))
	for _, line := range cart {
		if i, ok := index[line.ProductID]; ok {
			if line.Quantity > math.MaxInt-merged[i].Quantity {
				return nil, fmt.Errorf("%w: combined quantity of %s overflows", domain.ErrInvalidQuantity, line.ProductID)
			}
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}
