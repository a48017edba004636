package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seoscout/internal/api/response"
	"seoscout/internal/payment"
)

// NewPaymentStatusHandler returns an http.HandlerFunc for
// GET /api/v1/payments/{paymentID}, proxying the payment service's status
// endpoint. client is nil when payments are disabled.
func NewPaymentStatusHandler(client payment.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			response.Error(w, http.StatusServiceUnavailable, "PAYMENT_DISABLED",
				"Payment service is not configured", nil)
			return
		}

		paymentID := chi.URLParam(r, "paymentID")
		p, err := client.Status(r.Context(), paymentID)
		if err != nil {
			slog.Warn("payment status lookup failed", "payment_id", paymentID, "error", err)
			switch {
			case errors.Is(err, payment.ErrPaymentTimeout):
				response.Error(w, http.StatusGatewayTimeout, "PAYMENT_TIMEOUT",
					"Payment service did not respond in time", nil)
			case errors.Is(err, payment.ErrPaymentUnreachable):
				response.Error(w, http.StatusBadGateway, "PAYMENT_UNAVAILABLE",
					"Payment service is not reachable", nil)
			case errors.Is(err, payment.ErrPaymentRequestFailed):
				response.Error(w, http.StatusBadGateway, "PAYMENT_ERROR",
					"Payment service rejected the request", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, p)
	}
}
