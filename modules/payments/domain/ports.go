package domain

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// Order is what the orchestrator needs to know about the order being paid.
type Order struct {
	ID      types.OrderID
	UserID  types.UserID
	Payable bool
	Total   types.Money
}

// OrderGateway reads orders owned by the orders module.
type OrderGateway interface {
	Order(ctx context.Context, id types.OrderID) (Order, error)
}

// Intent is a provider-side handle for an authorized but unconfirmed charge.
type Intent struct {
	ProviderOrderID string
	Amount          types.Money
	// KeyID is the public key the client needs to open the provider's
	// checkout.
	KeyID string
}

// Provider is the payment gateway.
type Provider interface {
	// CreateIntent registers a charge for amount. receipt is our reference,
	// the order id.
	CreateIntent(ctx context.Context, receipt string, amount types.Money) (Intent, error)
	// VerifySignature checks the provider's signature over the callback.
	VerifySignature(providerOrderID, providerPaymentID, signature string) bool
}
