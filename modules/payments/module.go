// Package payments provides the payment orchestrator.
// This is the public API for the payments bounded context.
package payments

import (
	"log/slog"
	"net/http"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/payments/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/payments/application/queries"
	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	httphandler "github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/http"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
)

// Module is the public API for the payments bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: PAYMENT_* events through the outbox, order
// reads through the OrderGateway port.
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)
}

// Config holds the module configuration. FailurePublisher receives
// PAYMENT_FAILED directly; it is usually the broker publisher.
type Config struct {
	Repository       domain.PaymentRepository
	TxScope          transaction.Scope
	HandlerRegistry  eventbus.HandlerRegistry
	Orders           domain.OrderGateway
	Provider         domain.Provider
	FailurePublisher events.Publisher
	Guard            *auth.Guard
	Logger           *slog.Logger
}

type module struct {
	guard    *auth.Guard
	handlers httphandler.Handlers
	logger   *slog.Logger
}

// New creates a new payments module.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "payments")

	return &module{
		guard: cfg.Guard,
		handlers: httphandler.Handlers{
			InitiatePayment: commands.NewInitiatePaymentHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry, cfg.Orders, cfg.Provider),
			VerifyPayment:   commands.NewVerifyPaymentHandler(cfg.Repository, cfg.TxScope, cfg.HandlerRegistry, cfg.Provider, cfg.FailurePublisher, logger),
			GetPayment:      queries.NewGetPaymentHandler(cfg.Repository),
		},
		logger: logger,
	}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.guard, m.handlers, m.logger)
}
