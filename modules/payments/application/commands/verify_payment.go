package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// VerifyPaymentCommand carries the provider's checkout callback. UserID and
// Email identify the caller completing the payment.
type VerifyPaymentCommand struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
	UserID            string
	Email             string
}

type VerifyPaymentHandler struct {
	repo            domain.PaymentRepository
	txScope         transaction.Scope
	handlerRegistry eventbus.HandlerRegistry
	provider        domain.Provider
	failures        events.Publisher
	logger          *slog.Logger
}

// NewVerifyPaymentHandler creates the handler. failures receives
// PAYMENT_FAILED events directly, outside any transaction.
func NewVerifyPaymentHandler(
	repo domain.PaymentRepository,
	txScope transaction.Scope,
	handlerRegistry eventbus.HandlerRegistry,
	provider domain.Provider,
	failures events.Publisher,
	logger *slog.Logger,
) *VerifyPaymentHandler {
	return &VerifyPaymentHandler{
		repo:            repo,
		txScope:         txScope,
		handlerRegistry: handlerRegistry,
		provider:        provider,
		failures:        failures,
		logger:          logger,
	}
}

// Handle completes the pending payment for a verified callback. Only the
// first valid callback completes it; a replay of that callback returns the
// stored payment without raising another event. Any other failure publishes
// PAYMENT_FAILED and is returned.
func (h *VerifyPaymentHandler) Handle(ctx context.Context, cmd VerifyPaymentCommand) (payment *domain.Payment, err error) {
	ctx, span := tracer.Start(ctx, "payments.Verify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, types.Code(err))
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("payment.provider_order_id", cmd.ProviderOrderID))

	if cmd.ProviderOrderID == "" || cmd.ProviderPaymentID == "" || cmd.Signature == "" {
		return nil, h.fail(ctx, cmd, nil, domain.ErrMissingCallback)
	}
	requester, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}
	if !h.provider.VerifySignature(cmd.ProviderOrderID, cmd.ProviderPaymentID, cmd.Signature) {
		return nil, h.fail(ctx, cmd, nil, domain.ErrInvalidSignature)
	}

	// A concurrent duplicate callback loses the version race; the retry
	// then sees the completed payment and is treated as a replay.
	for attempt := 0; ; attempt++ {
		payment, err = h.complete(ctx, cmd, requester)
		if attempt == 0 && errors.Is(err, types.ErrConcurrentUpdate) {
			continue
		}
		break
	}

	switch {
	case err == nil:
		return payment, nil
	case errors.Is(err, domain.ErrPaymentForbidden):
		return nil, err
	case errors.Is(err, domain.ErrNotPending):
		return nil, h.fail(ctx, cmd, payment, fmt.Errorf("%w: %v", domain.ErrPaymentNotFound, err))
	default:
		return nil, h.fail(ctx, cmd, payment, err)
	}
}

// complete returns the loaded payment alongside any error so failures can
// be reported with what is known.
func (h *VerifyPaymentHandler) complete(ctx context.Context, cmd VerifyPaymentCommand, requester types.UserID) (*domain.Payment, error) {
	var found *domain.Payment
	err := h.txScope.Execute(ctx, func(ctx context.Context) error {
		// Create event bus inside closure for Spanner retry safety
		eventBus := eventbus.NewTransactional(h.handlerRegistry, 10)

		payment, err := h.repo.FindByProviderOrderID(ctx, cmd.ProviderOrderID)
		if err != nil {
			return fmt.Errorf("finding payment: %w", err)
		}
		found = payment
		if !payment.IsOwnedBy(requester) {
			return domain.ErrPaymentForbidden
		}
		if payment.IsCompletedBy(cmd.ProviderPaymentID) {
			h.logger.InfoContext(ctx, "replayed payment callback absorbed",
				slog.String("payment_id", payment.ID().String()),
				slog.String("provider_payment_id", cmd.ProviderPaymentID),
			)
			return nil
		}

		if err := payment.Complete(cmd.ProviderPaymentID, cmd.Signature, cmd.Email); err != nil {
			return err
		}
		if err := h.repo.Save(ctx, payment); err != nil {
			return fmt.Errorf("saving payment: %w", err)
		}
		if err := eventBus.Publish(ctx, payment.PopDomainEvents()...); err != nil {
			return fmt.Errorf("publishing events: %w", err)
		}
		return eventBus.Flush(ctx)
	})
	return found, err
}

// fail publishes PAYMENT_FAILED on a best-effort basis and returns cause.
func (h *VerifyPaymentHandler) fail(ctx context.Context, cmd VerifyPaymentCommand, payment *domain.Payment, cause error) error {
	evt := domain.NewPaymentFailedEvent(domain.FailureDetails{
		Payment:           payment,
		UserID:            cmd.UserID,
		Email:             cmd.Email,
		ProviderOrderID:   cmd.ProviderOrderID,
		ProviderPaymentID: cmd.ProviderPaymentID,
		Reason:            types.PublicMessage(cause),
	})

	logger := h.logger.With(
		slog.String("provider_order_id", cmd.ProviderOrderID),
		slog.String("event_id", evt.EventID()),
		slog.Any("cause", cause),
	)
	if err := h.failures.Publish(context.WithoutCancel(ctx), evt); err != nil {
		logger.ErrorContext(ctx, "failed to publish payment failed event", slog.Any("error", err))
	} else {
		logger.WarnContext(ctx, "payment verification failed")
	}
	return cause
}
