// Package queries contains read use cases for the payments module.
package queries

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// PaymentDTO is the read model returned to callers. The signature is not
// exposed.
type PaymentDTO struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"orderId"`
	UserID            string    `json:"userId"`
	ProviderOrderID   string    `json:"razorpayOrderId"`
	ProviderPaymentID string    `json:"paymentId,omitempty"`
	Status            string    `json:"status"`
	Price             MoneyDTO  `json:"price"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MoneyDTO carries the amount in major units.
type MoneyDTO struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func ToPaymentDTO(p *domain.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:                p.ID().String(),
		OrderID:           p.OrderID().String(),
		UserID:            p.UserID().String(),
		ProviderOrderID:   p.ProviderOrderID(),
		ProviderPaymentID: p.ProviderPaymentID(),
		Status:            p.Status().String(),
		Price:             MoneyDTO{Amount: json.Number(p.Price().Major().String()), Currency: p.Price().Currency()},
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

// GetPaymentQuery retrieves one of the requester's payments.
type GetPaymentQuery struct {
	PaymentID string
	UserID    string
}

type GetPaymentHandler struct {
	repo domain.PaymentRepository
}

func NewGetPaymentHandler(repo domain.PaymentRepository) *GetPaymentHandler {
	return &GetPaymentHandler{repo: repo}
}

// Handle reports another user's payment as not found.
func (h *GetPaymentHandler) Handle(ctx context.Context, query GetPaymentQuery) (*PaymentDTO, error) {
	id, err := types.ParsePaymentID(query.PaymentID)
	if err != nil {
		return nil, domain.ErrInvalidPaymentID
	}
	userID, err := types.ParseUserID(query.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}

	payment, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.IsOwnedBy(userID) {
		return nil, domain.ErrPaymentNotFound
	}
	return ToPaymentDTO(payment), nil
}
