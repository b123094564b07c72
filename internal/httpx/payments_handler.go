package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shanon-tech/commerce-api/internal/orders"
	"github.com/shanon-tech/commerce-api/internal/payments"
)

type PaymentsHandler struct {
	Svc *payments.Service
	Log *logrus.Logger
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/stripe/create-payment-intent", h.createIntent)
	r.Post("/stripe/confirm-payment", h.confirm)
	r.Post("/stripe/webhook", h.webhook)
}

type createIntentReq struct {
	Amount    decimal.Decimal     `json:"amount"`
	Currency  string              `json:"currency"`
	OrderData *orders.CreateInput `json:"orderData"`
}

func (h *PaymentsHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentReq
	if !decode(w, r, &req) {
		return
	}
	if req.Amount.IsZero() || req.OrderData == nil {
		writeError(w, http.StatusBadRequest, "amount and order data are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	meta := map[string]string{"orderTotal": req.Amount.String()}
	if req.OrderData.Customer != nil {
		meta["customerEmail"] = req.OrderData.Customer.Email
	}

	intent, err := h.Svc.CreateIntent(ctx, req.Amount, req.Currency, meta)
	if err != nil {
		h.Log.WithError(err).Error("create payment intent failed")
		writeError(w, http.StatusBadGateway, "failed to create payment intent")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

type confirmReq struct {
	PaymentIntentID string              `json:"paymentIntentId"`
	OrderData       *orders.CreateInput `json:"orderData"`
}

func (h *PaymentsHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if !decode(w, r, &req) {
		return
	}
	if req.PaymentIntentID == "" || req.OrderData == nil {
		writeError(w, http.StatusBadRequest, "payment intent id and order data are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Svc.Confirm(ctx, req.PaymentIntentID, req.OrderData)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// webhook verifies the gateway signature over the raw request body.
// The body must reach the verifier byte for byte as received, so it is
// read whole and never decoded first.
func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	ev, err := h.Svc.Gateway.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Log.WithError(err).Warn("webhook signature verification failed")
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.HandleEvent(ctx, ev); err != nil {
		h.Log.WithError(err).WithField("event", ev.ID).Error("webhook processing failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
