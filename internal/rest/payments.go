package rest

import (
	"net/http"

	"foodcourt-be/internal/order"
	"foodcourt-be/internal/payment"

	"github.com/go-chi/chi/v5"
)

type processPaymentRequest struct {
	OrderID       string `json:"orderId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	TransactionID string `json:"transactionId" validate:"max=100"`
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Payments.Process(r.Context(), actorOf(r), payment.ProcessInput{
		OrderID:       req.OrderID,
		Method:        order.PaymentMethod(req.PaymentMethod),
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Payments.GetByID(r.Context(), actorOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) getPaymentByOrder(w http.ResponseWriter, r *http.Request) {
	p, err := h.Payments.GetByOrder(r.Context(), actorOf(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
