package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/notifications/application/templates"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

// PaymentFailedHandler tells the buyer a payment could not be verified.
// The event carries only what was known at failure time; without an email
// there is nobody to notify.
type PaymentFailedHandler struct {
	notifier
}

func NewPaymentFailedHandler(mailer domain.Mailer, renderer *templates.Renderer, logger *slog.Logger) *PaymentFailedHandler {
	return &PaymentFailedHandler{notifier{mailer: mailer, renderer: renderer, logger: logger}}
}

func (h *PaymentFailedHandler) Handle(ctx context.Context, event events.Event) error {
	paymentFailed, ok := event.(contracts.PaymentFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", event)
	}
	logger := h.logger.With(
		slog.String("event_id", event.EventID()),
		slog.String("provider_order_id", paymentFailed.ProviderOrderID),
	)
	if paymentFailed.Email == "" {
		logger.Warn("payment failed without email, skipping notification", slog.String("reason", paymentFailed.Reason))
		return nil
	}

	logger.Info("sending payment failure email")
	return h.send(ctx, paymentFailed.Email, "Payment Failed", templates.PaymentFailed, map[string]string{
		"Name":    paymentFailed.Email,
		"OrderID": paymentFailed.OrderID,
		"Reason":  paymentFailed.Reason,
	})
}
