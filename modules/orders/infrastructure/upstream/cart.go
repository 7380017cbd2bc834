package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// CartClient reads the caller's cart from the cart service, which resolves
// the user from the forwarded token.
type CartClient struct {
	baseURL string
	client  *http.Client
}

func NewCartClient(baseURL string, client *http.Client) *CartClient {
	return &CartClient{baseURL: baseURL, client: client}
}

type cartResponse struct {
	Cart struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"qty"`
		} `json:"items"`
	} `json:"cart"`
}

// Cart implements domain.CartProvider. A missing cart is an empty cart.
func (c *CartClient) Cart(ctx context.Context, userID types.UserID) ([]domain.CartLine, error) {
	var resp cartResponse
	if err := getJSON(ctx, c.client, joinURL(c.baseURL, "api", "cart"), &resp); err != nil {
		if se, ok := err.(*statusError); ok && se.status == http.StatusNotFound {
			return nil, nil
		}
		return nil, classify(err, nil)
	}

	lines := make([]domain.CartLine, 0, len(resp.Cart.Items))
	for _, item := range resp.Cart.Items {
		pid, err := types.ParseProductID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: cart of %s has invalid product id %q", types.ErrUpstreamUnavailable, userID, item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: cart of %s has quantity %d for %s", domain.ErrInvalidQuantity, userID, item.Quantity, pid)
		}
		lines = append(lines, domain.CartLine{ProductID: pid, Quantity: item.Quantity})
	}
	return lines, nil
}

var _ domain.CartProvider = (*CartClient)(nil)
