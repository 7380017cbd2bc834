package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// CatalogClient reads products from the product service.
type CatalogClient struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
}

func NewCatalogClient(baseURL string, client *http.Client) *CatalogClient {
	return &CatalogClient{baseURL: baseURL, client: client}
}

type productResponse struct {
	Data struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
		Price struct {
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
		} `json:"price"`
		Stock int `json:"stock"`
	} `json:"data"`
}

// Product implements domain.CatalogGateway. Concurrent lookups of the same
// product share one request; results are not cached because price and
// stock must be current.
func (c *CatalogClient) Product(ctx context.Context, id types.ProductID) (domain.Product, error) {
	v, err, _ := c.group.Do(id.String(), func() (interface{}, error) {
		return c.fetch(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

func (c *CatalogClient) fetch(ctx context.Context, id types.ProductID) (domain.Product, error) {
	var resp productResponse
	if err := getJSON(ctx, c.client, joinURL(c.baseURL, "api", "products", url.PathEscape(id.String())), &resp); err != nil {
		return domain.Product{}, classify(err, domain.ErrProductNotFound)
	}

	price, err := types.MoneyFromMajor(resp.Data.Price.Amount, resp.Data.Price.Currency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: product %s has invalid price: %v", types.ErrUpstreamUnavailable, id, err)
	}

	return domain.Product{
		ID:    id,
		Title: resp.Data.Title,
		Price: price,
		Stock: resp.Data.Stock,
	}, nil
}

var _ domain.CatalogGateway = (*CatalogClient)(nil)
