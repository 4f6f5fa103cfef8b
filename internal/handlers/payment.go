package handlers

import (
	"net/http"
	"strings"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// PaymentHandler provides HTTP handlers for membership purchases.
type PaymentHandler struct {
	payments *services.PaymentService
	log      logging.Logger
}

func NewPaymentHandler(payments *services.PaymentService, log logging.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

func PaymentRouter(r chi.Router, handler *PaymentHandler, throttle func(http.Handler) http.Handler) {
	r.With(throttle).Post("/create-payment-intent", handler.CreatePaymentIntent)
	r.Post("/membership", handler.RecordMembership)
}

func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	secret, err := h.payments.CreateIntent(r.Context(), req.Price)
	if err != nil {
		writeServiceError(w, r, h.log, err, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, PaymentIntentResponse{ClientSecret: secret})
}

func (h *PaymentHandler) RecordMembership(w http.ResponseWriter, r *http.Request) {
	var req MembershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.payments.RecordMembership(r.Context(), types.Payment{
		Email:         strings.TrimSpace(req.Email),
		Name:          req.Name,
		TransactionID: strings.TrimSpace(req.TransactionID),
		Price:         req.Price,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{Payment: payment, Membership: types.MembershipMember})
}

type PaymentIntentRequest struct {
	Price float64 `json:"price"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type MembershipRequest struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	TransactionID string  `json:"transactionId"`
	Price         float64 `json:"price"`
}

type MembershipResponse struct {
	Payment    types.Payment `json:"payment"`
	Membership string        `json:"membership"`
}
