// Package queries contains read use cases for the orders module.
package queries

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// OrderDTO is a read model for order data.
type OrderDTO struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Items           []LineItemDTO `json:"items"`
	ShippingAddress AddressDTO    `json:"shippingAddress"`
	Status          string        `json:"status"`
	TotalPrice      MoneyDTO      `json:"totalPrice"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type LineItemDTO struct {
	ProductID string   `json:"productId"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	UnitPrice MoneyDTO `json:"unitPrice"`
	Price     MoneyDTO `json:"price"`
}

type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pinCode"`
	Country string `json:"country"`
}

// MoneyDTO carries the amount in major units (200.00 INR is 200).
type MoneyDTO struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func NewMoneyDTO(m types.Money) MoneyDTO {
	return MoneyDTO{Amount: json.Number(m.Major().String()), Currency: m.Currency()}
}

// GetOrderQuery retrieves one of the requester's orders.
type GetOrderQuery struct {
	OrderID string
	UserID  string
}

type GetOrderHandler struct {
	repo domain.OrderRepository
}

func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle reports another user's order as not found.
func (h *GetOrderHandler) Handle(ctx context.Context, query GetOrderQuery) (*OrderDTO, error) {
	orderID, err := types.ParseOrderID(query.OrderID)
	if err != nil {
		return nil, domain.ErrInvalidOrderID
	}
	userID, err := types.ParseUserID(query.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}

	order, err := h.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, domain.ErrOrderNotFound
	}

	return ToOrderDTO(order), nil
}

func ToOrderDTO(order *domain.Order) *OrderDTO {
	items := make([]LineItemDTO, len(order.Items()))
	for i, item := range order.Items() {
		items[i] = LineItemDTO{
			ProductID: item.ProductID.String(),
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: NewMoneyDTO(item.UnitPrice),
			Price:     NewMoneyDTO(item.Price),
		}
	}

	addr := order.ShippingAddress()
	return &OrderDTO{
		ID:     order.ID().String(),
		UserID: order.UserID().String(),
		Items:  items,
		ShippingAddress: AddressDTO{
			Street:  addr.Street(),
			City:    addr.City(),
			State:   addr.State(),
			PinCode: addr.PinCode(),
			Country: addr.Country(),
		},
		Status:     order.Status().String(),
		TotalPrice: NewMoneyDTO(order.Total()),
		CreatedAt:  order.CreatedAt(),
		UpdatedAt:  order.UpdatedAt(),
	}
}
