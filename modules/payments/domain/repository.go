package domain

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// PaymentRepository defines persistence operations for payments.
//
// Save is a compare-and-swap on the payment's version, like the order
// repository: a stale writer gets types.ErrConcurrentUpdate. This is the
// guard that lets only the first valid callback complete a payment.
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id types.PaymentID) (*Payment, error)
	// FindByProviderOrderID returns the most recent payment for the
	// provider intent.
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*Payment, error)
}
