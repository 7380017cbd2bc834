// Package commands contains the payment orchestrator's write use cases.
package commands

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

var tracer = otel.Tracer("github.com/kunalsingh7053/VyaparX/modules/payments")

// InitiatePaymentCommand opens a payment for one of the requester's orders.
type InitiatePaymentCommand struct {
	OrderID string
	UserID  string
}

type InitiatePaymentHandler struct {
	repo            domain.PaymentRepository
	txScope         transaction.Scope
	handlerRegistry eventbus.HandlerRegistry
	orders          domain.OrderGateway
	provider        domain.Provider
}

func NewInitiatePaymentHandler(
	repo domain.PaymentRepository,
	txScope transaction.Scope,
	handlerRegistry eventbus.HandlerRegistry,
	orders domain.OrderGateway,
	provider domain.Provider,
) *InitiatePaymentHandler {
	return &InitiatePaymentHandler{
		repo:            repo,
		txScope:         txScope,
		handlerRegistry: handlerRegistry,
		orders:          orders,
		provider:        provider,
	}
}

// Handle creates a provider intent for the order's frozen total and records
// a pending payment for it. The intent is created before the transaction;
// an intent whose payment row fails to commit is never completed.
func (h *InitiatePaymentHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (payment *domain.Payment, intent domain.Intent, err error) {
	ctx, span := tracer.Start(ctx, "payments.Initiate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, types.Code(err))
		}
		span.End()
	}()

	orderID, err := types.ParseOrderID(cmd.OrderID)
	if err != nil {
		return nil, domain.Intent{}, domain.ErrInvalidOrderID
	}
	requester, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, domain.Intent{}, types.ErrUnauthorized
	}
	span.SetAttributes(attribute.String("order.id", orderID.String()))

	order, err := h.orders.Order(ctx, orderID)
	if err != nil {
		return nil, domain.Intent{}, fmt.Errorf("fetching order: %w", err)
	}
	if order.UserID != requester {
		return nil, domain.Intent{}, domain.ErrPaymentForbidden
	}
	if !order.Payable {
		return nil, domain.Intent{}, domain.ErrOrderNotPayable
	}

	intent, err = h.provider.CreateIntent(ctx, orderID.String(), order.Total)
	if err != nil {
		return nil, domain.Intent{}, fmt.Errorf("creating provider intent: %w", err)
	}

	payment = domain.NewPayment(orderID, requester, intent.ProviderOrderID, order.Total)

	err = h.txScope.Execute(ctx, func(ctx context.Context) error {
		// Create event bus inside closure for Spanner retry safety
		eventBus := eventbus.NewTransactional(h.handlerRegistry, 10)

		if err := h.repo.Save(ctx, payment); err != nil {
			return fmt.Errorf("saving payment: %w", err)
		}
		if err := eventBus.Publish(ctx, payment.DomainEvents()...); err != nil {
			return fmt.Errorf("publishing events: %w", err)
		}
		return eventBus.Flush(ctx)
	})
	if err != nil {
		return nil, domain.Intent{}, err
	}
	payment.PopDomainEvents()

	span.SetAttributes(attribute.String("payment.id", payment.ID().String()))
	return payment, intent, nil
}
