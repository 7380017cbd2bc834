package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kunalsingh7053/VyaparX/modules/notifications/application/templates"
	"github.com/kunalsingh7053/VyaparX/modules/notifications/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// PaymentCompletedHandler tells the buyer their payment went through.
type PaymentCompletedHandler struct {
	notifier
}

func NewPaymentCompletedHandler(mailer domain.Mailer, renderer *templates.Renderer, logger *slog.Logger) *PaymentCompletedHandler {
	return &PaymentCompletedHandler{notifier{mailer: mailer, renderer: renderer, logger: logger}}
}

func (h *PaymentCompletedHandler) Handle(ctx context.Context, event events.Event) error {
	paymentCompleted, ok := event.(contracts.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", event)
	}
	logger := h.logger.With(
		slog.String("event_id", event.EventID()),
		slog.String("payment_id", paymentCompleted.PaymentID),
	)
	if paymentCompleted.Email == "" {
		logger.Warn("payment completed without email, skipping notification")
		return nil
	}

	logger.Info("sending payment success email")
	return h.send(ctx, paymentCompleted.Email, "Payment Successful", templates.PaymentCompleted, map[string]string{
		"Name":      paymentCompleted.Email,
		"Amount":    formatAmount(paymentCompleted.Amount, paymentCompleted.Currency),
		"OrderID":   paymentCompleted.OrderID,
		"PaymentID": paymentCompleted.ProviderPaymentID,
	})
}

func formatAmount(amount int64, currency string) string {
	m, err := types.NewMoney(amount, currency)
	if err != nil {
		return fmt.Sprintf("%d %s", amount, currency)
	}
	return m.String()
}
