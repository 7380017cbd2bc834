// Package http provides HTTP handlers for the orders module.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/httpserver"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/queries"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateOrder   *commands.CreateOrderHandler
	CancelOrder   *commands.CancelOrderHandler
	UpdateAddress *commands.UpdateShippingAddressHandler
	FulfilOrder   *commands.FulfilOrderHandler
	GetOrder      *queries.GetOrderHandler
	ListOrders    *queries.ListUserOrdersHandler
}

type Handler struct {
	Handlers
	logger *slog.Logger
}

// RegisterRoutes registers the orders module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, guard *auth.Guard, handlers Handlers, logger *slog.Logger) {
	h := &Handler{Handlers: handlers, logger: logger}

	mux.HandleFunc("POST /orders", guard.Require(auth.CapOrderCreate, h.handleCreateOrder))
	mux.HandleFunc("GET /orders/me", guard.Require(auth.CapOrderRead, h.handleListMyOrders))
	mux.HandleFunc("GET /orders/{orderId}", guard.Require(auth.CapOrderRead, h.handleGetOrder))
	mux.HandleFunc("POST /orders/{orderId}/cancel", guard.Require(auth.CapOrderManage, h.handleCancelOrder))
	mux.HandleFunc("PATCH /orders/{orderId}/address", guard.Require(auth.CapOrderManage, h.handleUpdateAddress))
	mux.HandleFunc("POST /orders/{orderId}/ship", guard.Require(auth.CapOrderFulfil, h.handleFulfil(commands.StepShip)))
	mux.HandleFunc("POST /orders/{orderId}/deliver", guard.Require(auth.CapOrderFulfil, h.handleFulfil(commands.StepDeliver)))
}

// Request/Response DTOs

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pinCode"`
	Country string `json:"country"`
}

type shippingRequest struct {
	ShippingAddress addressRequest `json:"shippingAddress"`
}

type orderResponse struct {
	Message string            `json:"message"`
	Order   *queries.OrderDTO `json:"order"`
}

// Handlers

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteBadRequest(w, "invalid request body")
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	cmd := commands.CreateOrderCommand{
		UserID:  p.UserID.String(),
		Street:  req.ShippingAddress.Street,
		City:    req.ShippingAddress.City,
		State:   req.ShippingAddress.State,
		PinCode: req.ShippingAddress.PinCode,
		Country: req.ShippingAddress.Country,
	}

	order, err := h.CreateOrder.Handle(r.Context(), cmd)
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusCreated, orderResponse{Message: "Order Created Successfully", Order: queries.ToOrderDTO(order)})
}

func (h *Handler) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.ListOrders.Handle(r.Context(), queries.ListUserOrdersQuery{
		UserID: p.UserID.String(),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	order, err := h.GetOrder.Handle(r.Context(), queries.GetOrderQuery{
		OrderID: r.PathValue("orderId"),
		UserID:  p.UserID.String(),
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, orderResponse{Message: "Order fetched successfully", Order: order})
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	order, err := h.CancelOrder.Handle(r.Context(), commands.CancelOrderCommand{
		OrderID: r.PathValue("orderId"),
		UserID:  p.UserID.String(),
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, orderResponse{Message: "Order cancelled successfully", Order: queries.ToOrderDTO(order)})
}

func (h *Handler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteBadRequest(w, "invalid request body")
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	order, err := h.UpdateAddress.Handle(r.Context(), commands.UpdateShippingAddressCommand{
		OrderID: r.PathValue("orderId"),
		UserID:  p.UserID.String(),
		Street:  req.ShippingAddress.Street,
		City:    req.ShippingAddress.City,
		State:   req.ShippingAddress.State,
		PinCode: req.ShippingAddress.PinCode,
		Country: req.ShippingAddress.Country,
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, orderResponse{Message: "Order address updated successfully", Order: queries.ToOrderDTO(order)})
}

func (h *Handler) handleFulfil(step commands.FulfilmentStep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := h.FulfilOrder.Handle(r.Context(), commands.FulfilOrderCommand{
			OrderID: r.PathValue("orderId"),
			Step:    step,
		})
		if err != nil {
			httpserver.WriteError(w, r, h.logger, err)
			return
		}

		h.logger.InfoContext(r.Context(), "order fulfilment step applied",
			slog.String("order_id", order.ID().String()),
			slog.String("status", string(order.Status())),
		)
		httpserver.WriteJSON(w, http.StatusOK, orderResponse{Message: "Order status updated", Order: queries.ToOrderDTO(order)})
	}
}
