package provider

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

const SandboxKeyID = "rzp_sandbox"

// Sandbox issues intents locally. Callbacks for it are signed with Sign
// and the same secret, e.g. by the sign-callback command.
type Sandbox struct {
	secret string
}

func NewSandbox(secret string) *Sandbox {
	return &Sandbox{secret: secret}
}

func (s *Sandbox) CreateIntent(ctx context.Context, receipt string, amount types.Money) (domain.Intent, error) {
	id := "order_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:14]
	return domain.Intent{ProviderOrderID: id, Amount: amount, KeyID: SandboxKeyID}, nil
}

func (s *Sandbox) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	return Verify(s.secret, providerOrderID, providerPaymentID, signature)
}

var _ domain.Provider = (*Sandbox)(nil)
