// Package http provides HTTP handlers for the payments module.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/httpserver"
	"github.com/kunalsingh7053/VyaparX/modules/payments/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/payments/application/queries"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	InitiatePayment *commands.InitiatePaymentHandler
	VerifyPayment   *commands.VerifyPaymentHandler
	GetPayment      *queries.GetPaymentHandler
}

type Handler struct {
	Handlers
	logger *slog.Logger
}

// RegisterRoutes registers the payments module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, guard *auth.Guard, handlers Handlers, logger *slog.Logger) {
	h := &Handler{Handlers: handlers, logger: logger}

	mux.HandleFunc("POST /payments/orders/{orderId}", guard.Require(auth.CapPaymentCreate, h.handleInitiate))
	mux.HandleFunc("POST /payments/verify", guard.Require(auth.CapPaymentVerify, h.handleVerify))
	mux.HandleFunc("GET /payments/{paymentId}", guard.Require(auth.CapPaymentRead, h.handleGetPayment))
}

// Request/Response DTOs

type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

type intentResponse struct {
	RazorpayOrderID string           `json:"razorpayOrderId"`
	Amount          queries.MoneyDTO `json:"amount"`
	KeyID           string           `json:"keyId"`
}

type paymentResponse struct {
	Message string              `json:"message"`
	Payment *queries.PaymentDTO `json:"payment"`
	Intent  *intentResponse     `json:"intent,omitempty"`
}

// Handlers

func (h *Handler) handleInitiate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	payment, intent, err := h.InitiatePayment.Handle(r.Context(), commands.InitiatePaymentCommand{
		OrderID: r.PathValue("orderId"),
		UserID:  p.UserID.String(),
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	dto := queries.ToPaymentDTO(payment)
	httpserver.WriteJSON(w, http.StatusCreated, paymentResponse{
		Message: "payment initiated",
		Payment: dto,
		Intent: &intentResponse{
			RazorpayOrderID: intent.ProviderOrderID,
			Amount:          dto.Price,
			KeyID:           intent.KeyID,
		},
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteBadRequest(w, "invalid request body")
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	payment, err := h.VerifyPayment.Handle(r.Context(), commands.VerifyPaymentCommand{
		ProviderOrderID:   req.RazorpayOrderID,
		ProviderPaymentID: req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
		UserID:            p.UserID.String(),
		Email:             p.Email,
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, paymentResponse{Message: "Payment verified successfully", Payment: queries.ToPaymentDTO(payment)})
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	payment, err := h.GetPayment.Handle(r.Context(), queries.GetPaymentQuery{
		PaymentID: r.PathValue("paymentId"),
		UserID:    p.UserID.String(),
	})
	if err != nil {
		httpserver.WriteError(w, r, h.logger, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, paymentResponse{Message: "Payment fetched successfully", Payment: payment})
}
