package eventhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/orders/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

// PaymentCompletedHandler confirms the paid order. It is delivered
// at-least-once and possibly out of order, so outcomes that a retry cannot
// change are logged and acknowledged rather than returned.
type PaymentCompletedHandler struct {
	confirmOrder *commands.ConfirmOrderHandler
	logger       *slog.Logger
}

func NewPaymentCompletedHandler(confirmOrder *commands.ConfirmOrderHandler, logger *slog.Logger) *PaymentCompletedHandler {
	return &PaymentCompletedHandler{
		confirmOrder: confirmOrder,
		logger:       logger,
	}
}

func (h *PaymentCompletedHandler) Handle(ctx context.Context, event events.Event) error {
	paymentCompleted, ok := event.(contracts.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", event)
	}

	logger := h.logger.With(
		slog.String("event_id", event.EventID()),
		slog.String("order_id", paymentCompleted.OrderID),
		slog.String("payment_id", paymentCompleted.PaymentID),
	)
	logger.Info("handling payment completed event, confirming order")

	order, err := h.confirmOrder.Handle(ctx, commands.ConfirmOrderCommand{OrderID: paymentCompleted.OrderID})
	switch {
	case err == nil:
		logger.Info("order confirmed", slog.String("status", order.Status().String()))
		return nil
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrInvalidOrderID):
		// Paid after cancellation (or for an unknown order) needs a human,
		// not a redelivery.
		logger.Error("payment completed for an order that cannot be confirmed", slog.Any("error", err))
		return nil
	default:
		return fmt.Errorf("confirming order %s: %w", paymentCompleted.OrderID, err)
	}
}
