package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"electrohive-be/internal/payment"
)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type createOrderRequest struct {
	Amount *float64 `json:"amount"` // minor units (paise)
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), *req.Amount)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

type verifyRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
	OrderRef         string `json:"order_ref"`
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Verify(r.Context(), payment.VerificationRequest{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
		LocalOrderRef:    req.OrderRef,
	})
	if err != nil {
		h.writePaymentError(w, err)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"payment": result.Payment,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) writePaymentError(w http.ResponseWriter, err error) {
	var gwErr *payment.GatewayError
	var notCaptured *payment.NotCapturedError

	switch {
	case errors.Is(err, payment.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrMissingFields):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrSignatureMismatch):
		writeError(w, http.StatusBadRequest, "payment signature verification failed")
	case errors.Is(err, payment.ErrOrderMismatch):
		writeError(w, http.StatusBadRequest, "payment does not match the given order")
	case errors.As(err, &notCaptured):
		writeError(w, http.StatusBadRequest, notCaptured.Error())
	case errors.Is(err, payment.ErrPaymentRecordNotFound):
		writeError(w, http.StatusNotFound, "payment record not found")
	case errors.As(err, &gwErr):
		writeError(w, gwErr.StatusCode, gwErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
