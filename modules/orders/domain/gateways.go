package domain

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// Product is the catalog's current view of a product.
type Product struct {
	ID    types.ProductID
	Title string
	Price types.Money
	Stock int
}

// CatalogGateway reads authoritative price and stock. Implementations
// return ErrProductNotFound for unknown ids and wrap
// types.ErrUpstreamUnavailable for transport failures.
type CatalogGateway interface {
	Product(ctx context.Context, id types.ProductID) (Product, error)
}

// CartLine is one entry of the user's cart.
type CartLine struct {
	ProductID types.ProductID
	Quantity  int
}

// CartProvider returns the user's current cart.
type CartProvider interface {
	Cart(ctx context.Context, userID types.UserID) ([]CartLine, error)
}
