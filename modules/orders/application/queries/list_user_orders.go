package queries

import (
	"context"
	"math"

	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// OrderListDTO contains a paginated list of orders.
type OrderListDTO struct {
	Page        int         `json:"page"`
	Limit       int         `json:"limit"`
	TotalOrders int         `json:"totalOrders"`
	TotalPages  int         `json:"totalPages"`
	Orders      []*OrderDTO `json:"orders"`
}

// ListUserOrdersQuery retrieves the requester's orders, newest first.
// Page is 1-based.
type ListUserOrdersQuery struct {
	UserID string
	Page   int
	Limit  int
}

type ListUserOrdersHandler struct {
	repo domain.OrderRepository
}

func NewListUserOrdersHandler(repo domain.OrderRepository) *ListUserOrdersHandler {
	return &ListUserOrdersHandler{repo: repo}
}

func (h *ListUserOrdersHandler) Handle(ctx context.Context, query ListUserOrdersQuery) (*OrderListDTO, error) {
	userID, err := types.ParseUserID(query.UserID)
	if err != nil {
		return nil, types.ErrUnauthorized
	}

	page := query.Page
	if page < 1 {
		page = defaultPage
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	// Pages past what an int offset can address are simply empty.
	offset := math.MaxInt - limit
	if page-1 <= offset/limit {
		offset = (page - 1) * limit
	}

	orders, total, err := h.repo.FindByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]*OrderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = ToOrderDTO(order)
	}

	return &OrderListDTO{
		Page:        page,
		Limit:       limit,
		TotalOrders: total,
		TotalPages:  (total + limit - 1) / limit,
		Orders:      dtos,
	}, nil
}
