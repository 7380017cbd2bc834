// Package types provides shared value objects and type definitions
// used across multiple modules (Shared Kernel pattern).
package types

import (
	"strings"

	"github.com/google/uuid"
)

// UserID identifies a user issued by the auth service. Its format is owned
// by that service, so only presence and length are checked here.
type UserID struct {
	value string
}

func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return UserID{}, ErrInvalidID
	}
	return UserID{value: s}, nil
}

func (id UserID) String() string { return id.value }
func (id UserID) IsZero() bool   { return id.value == "" }

// ProductID identifies a catalog product.
type ProductID struct {
	value string
}

func ParseProductID(s string) (ProductID, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return ProductID{}, ErrInvalidID
	}
	return ProductID{value: s}, nil
}

func (id ProductID) String() string { return id.value }
func (id ProductID) IsZero() bool   { return id.value == "" }

// OrderID represents a unique identifier for an order.
type OrderID struct {
	value string
}

func NewOrderID() OrderID {
	return OrderID{value: uuid.New().String()}
}

func ParseOrderID(s string) (OrderID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return OrderID{}, ErrInvalidID
	}
	return OrderID{value: s}, nil
}

func (id OrderID) String() string { return id.value }
func (id OrderID) IsZero() bool   { return id.value == "" }

// PaymentID represents a unique identifier for a payment.
type PaymentID struct {
	value string
}

func NewPaymentID() PaymentID {
	return PaymentID{value: uuid.New().String()}
}

func ParsePaymentID(s string) (PaymentID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return PaymentID{}, ErrInvalidID
	}
	return PaymentID{value: s}, nil
}

func (id PaymentID) String() string { return id.value }
func (id PaymentID) IsZero() bool   { return id.value == "" }
