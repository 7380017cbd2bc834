// Package domain defines the seller dashboard's read models. They are
// projections of other services' events and are never written by
// commands of their own.
package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("projection not found")

type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
	UpdatedAt time.Time
}

type Product struct {
	ID        string
	SellerID  string
	Title     string
	Price     int64
	Currency  string
	Stock     int
	UpdatedAt time.Time
}

// Order is the dashboard view of an order. Items and totals are frozen at
// creation; only Status moves, stamped with the time of the event that set it.
type Order struct {
	ID          string
	UserID      string
	Items       []OrderItem
	TotalAmount int64
	Currency    string
	Status      string
	StatusAt    time.Time
}

type OrderItem struct {
	ProductID string
	Title     string
	Quantity  int
	Amount    int64
	Currency  string
}

type Payment struct {
	ID                string
	OrderID           string
	UserID            string
	ProviderOrderID   string
	ProviderPaymentID string
	Amount            int64
	Currency          string
	Status            string
	StatusAt          time.Time
}

// ProjectionStore applies events as idempotent upserts keyed by entity id.
// A write carrying an older timestamp than the stored row never overwrites
// the newer state, so redelivered and reordered events converge.
type ProjectionStore interface {
	UpsertUser(ctx context.Context, u User) error
	UpsertProduct(ctx context.Context, p Product) error
	UpsertOrder(ctx context.Context, o Order) error
	UpdateOrderStatus(ctx context.Context, orderID, userID, status string, at time.Time) error
	UpsertPayment(ctx context.Context, p Payment) error
}
