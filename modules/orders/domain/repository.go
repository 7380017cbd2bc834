package domain

import (
	"context"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// OrderRepository defines persistence operations for orders.
//
// Save is a compare-and-swap on the order's version: it fails with
// types.ErrConcurrentUpdate when the stored order changed since it was
// loaded (or, for a new order, when one with that id exists). The stored
// version becomes Version()+1; the aggregate itself is left untouched so a
// retried transaction can save it again.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id types.OrderID) (*Order, error)
	// FindByUserID returns one page of the user's orders, newest first,
	// and the user's total order count.
	FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*Order, int, error)
}
