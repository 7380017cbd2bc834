// Package orders provides order management functionality.
// This is the public API for the orders bounded context.
package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/eventhandlers"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/queries"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	httphandler "github.com/kunalsingh7053/VyaparX/modules/orders/infrastructure/http"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// Module is the public API for the orders bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: Domain Events (subscribed internally) and
// OrderSummary for the payments module.
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)

	// OrderSummary returns what another module may know about an order.
	// It does not check ownership.
	OrderSummary(ctx context.Context, orderID string) (OrderSummary, error)
}

// OrderSummary is the cross-module view of an order.
type OrderSummary struct {
	ID     string
	UserID string
	Status string
	Total  types.Money
}

// IsPayable reports whether a payment may be initiated for the order.
func (s OrderSummary) IsPayable() bool {
	return s.Status == domain.StatusPending.String()
}

// Config holds the module configuration. EventSubscriber is nil in
// processes that do not consume events.
type Config struct {
	Repository      domain.OrderRepository
	TxScope         transaction.Scope
	HandlerRegistry eventbus.HandlerRegistry
	Cart            domain.CartProvider
	Catalog         domain.CatalogGateway
	Guard           *auth.Guard
	EventSubscriber events.Subscriber
	Logger          *slog.Logger
}

type module struct {
	repo     domain.OrderRepository
	guard    *auth.Guard
	handlers httphandler.Handlers
	logger   *slog.Logger
}

// New creates a new orders module.
func New(cfg Config) (Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "orders")

	confirmOrderHandler := commands.NewConfirmOrderHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry)

	// Subscribe to cross-module events
	if cfg.EventSubscriber != nil {
		paymentCompletedHandler := eventhandlers.NewPaymentCompletedHandler(confirmOrderHandler, logger)
		if err := cfg.EventSubscriber.Subscribe(contracts.PaymentCompletedEventType, paymentCompletedHandler); err != nil {
			return nil, err
		}
	}

	return &module{
		repo:  cfg.Repository,
		guard: cfg.Guard,
		handlers: httphandler.Handlers{
			CreateOrder:   commands.NewCreateOrderHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry, cfg.Cart, cfg.Catalog),
			CancelOrder:   commands.NewCancelOrderHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry),
			UpdateAddress: commands.NewUpdateShippingAddressHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry),
			FulfilOrder:   commands.NewFulfilOrderHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry),
			GetOrder:      queries.NewGetOrderHandler(cfg.Repository),
			ListOrders:    queries.NewListUserOrdersHandler(cfg.Repository),
		},
		logger: logger,
	}, nil
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.guard, m.handlers, m.logger)
}

func (m *module) OrderSummary(ctx context.Context, orderID string) (OrderSummary, error) {
	id, err := types.ParseOrderID(orderID)
	if err != nil {
		return OrderSummary{}, domain.ErrInvalidOrderID
	}
	order, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return OrderSummary{}, err
	}
	return OrderSummary{
		ID:     order.ID().String(),
		UserID: order.UserID().String(),
		Status: order.Status().String(),
		Total:  order.Total(),
	}, nil
}
