package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

const DefaultRazorpayURL = "https://api.razorpay.com"

// Razorpay creates orders through the Razorpay Orders API and verifies
// checkout signatures with the key secret.
type Razorpay struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewRazorpay(baseURL, keyID, keySecret string, timeout time.Duration) *Razorpay {
	if baseURL == "" {
		baseURL = DefaultRazorpayURL
	}
	return &Razorpay{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateIntent creates a Razorpay order. Amounts are sent in minor units.
func (r *Razorpay) CreateIntent(ctx context.Context, receipt string, amount types.Money) (domain.Intent, error) {
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   amount.Amount(),
		Currency: amount.Currency(),
		Receipt:  receipt,
	})
	if err != nil {
		return domain.Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return domain.Intent{}, err
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %v", domain.ErrProviderRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Intent{}, fmt.Errorf("%w: razorpay returned %d", domain.ErrProviderRejected, resp.StatusCode)
	}

	var out razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Intent{}, fmt.Errorf("%w: decoding order: %v", domain.ErrProviderRejected, err)
	}
	if out.ID == "" {
		return domain.Intent{}, fmt.Errorf("%w: order without id", domain.ErrProviderRejected)
	}

	return domain.Intent{ProviderOrderID: out.ID, Amount: amount, KeyID: r.keyID}, nil
}

func (r *Razorpay) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	return Verify(r.keySecret, providerOrderID, providerPaymentID, signature)
}

var _ domain.Provider = (*Razorpay)(nil)
