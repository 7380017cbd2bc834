package domain

import (
	"fmt"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

var (
	ErrOrderNotFound       = types.NewError(types.KindNotFound, "order_not_found", "Order not found")
	ErrInvalidOrderID      = types.NewError(types.KindValidation, "invalid_order_id", "Invalid orderId")
	ErrEmptyCart           = types.NewError(types.KindValidation, "empty_cart", "Cart is empty")
	ErrInvalidQuantity     = types.NewError(types.KindValidation, "invalid_quantity", "Quantity must be at least 1")
	ErrProductNotFound     = types.NewError(types.KindConflict, "product_not_found", "Product not found")
	ErrInsufficientStock   = types.NewError(types.KindConflict, "insufficient_stock", "Insufficient stock")
	ErrNotCancellable      = types.NewError(types.KindConflict, "not_cancellable", "Only pending orders can be cancelled")
	ErrAddressNotUpdatable = types.NewError(types.KindConflict, "address_not_updatable", "Only pending or confirmed orders can be updated")
	ErrInvalidTransition   = types.NewError(types.KindConflict, "invalid_transition", "Invalid order status transition")
	ErrCancelForbidden     = types.NewError(types.KindForbidden, "forbidden", "Forbidden: You can only cancel your own orders")
	ErrUpdateForbidden     = types.NewError(types.KindForbidden, "forbidden", "Forbidden: You can only update your own orders")
)

// InsufficientStockError names the product that cannot cover the requested
// quantity. It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q: requested %d, %d in stock", e.Title, e.Requested, e.Available)
}

func (e *InsufficientStockError) PublicMessage() string {
	return fmt.Sprintf("Product %s is out of stock", e.Title)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
