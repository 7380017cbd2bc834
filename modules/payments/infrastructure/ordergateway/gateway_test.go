package ordergateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kunalsingh7053/VyaparX/modules/orders"
	"github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/ordergateway"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

type mockOrderSource struct {
	orderSummaryFn func(ctx context.Context, orderID string) (orders.OrderSummary, error)
}

func (m *mockOrderSource) OrderSummary(ctx context.Context, orderID string) (orders.OrderSummary, error) {
	return m.orderSummaryFn(ctx, orderID)
}

func TestGateway_Order(t *testing.T) {
	id := types.NewOrderID()
	source := &mockOrderSource{orderSummaryFn: func(ctx context.Context, orderID string) (orders.OrderSummary, error) {
		return orders.OrderSummary{ID: orderID, UserID: "u1", Status: "pending", Total: types.MustNewMoney(20000, "INR")}, nil
	}}

	order, err := ordergateway.New(source).Order(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Payable {
		t.Error("expected a pending order to be payable")
	}
	if order.UserID.String() != "u1" {
		t.Errorf("expected owner u1, got %s", order.UserID)
	}
}

func TestGateway_Order_NotPayable(t *testing.T) {
	source := &mockOrderSource{orderSummaryFn: func(ctx context.Context, orderID string) (orders.OrderSummary, error) {
		return orders.OrderSummary{ID: orderID, UserID: "u1", Status: "confirmed", Total: types.MustNewMoney(20000, "INR")}, nil
	}}

	order, err := ordergateway.New(source).Order(context.Background(), types.NewOrderID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Payable {
		t.Error("expected a confirmed order not to be payable")
	}
}

func TestGateway_Order_PropagatesErrors(t *testing.T) {
	want := errors.New("lookup failed")
	source := &mockOrderSource{orderSummaryFn: func(ctx context.Context, orderID string) (orders.OrderSummary, error) {
		return orders.OrderSummary{}, want
	}}

	if _, err := ordergateway.New(source).Order(context.Background(), types.NewOrderID()); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}
