package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shanon-tech/commerce-api/internal/catalog"
)

type StockNotifyHandler struct {
	Svc      *catalog.Service
	Waitlist *catalog.NotificationRepo
}

func (h *StockNotifyHandler) Register(r *chi.Mux, auth *Auth) {
	r.Post("/stock-notifications/subscribe", h.subscribe)
	r.Post("/stock-notifications/unsubscribe", h.unsubscribe)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/stock-notifications", h.list)
		r.Get("/stock-notifications/product/{productId}", h.listByProduct)
		r.Post("/stock-notifications/product/{productId}/resend", h.resend)
		r.Delete("/stock-notifications/{id}", h.remove)
	})
}

type waitlistReq struct {
	Email     string `json:"email"`
	ProductID string `json:"productId"`
}

func (h *StockNotifyHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req waitlistReq
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.Svc.SubscribeRestock(ctx, req.Email, req.ProductID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *StockNotifyHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req waitlistReq
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.UnsubscribeRestock(ctx, req.Email, req.ProductID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}

func (h *StockNotifyHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ns, err := h.Waitlist.ListAll(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

func (h *StockNotifyHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ns, err := h.Waitlist.ListByProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

// resend re-runs the restock sweep for a product, picking up
// subscribers whose earlier sends failed.
func (h *StockNotifyHandler) resend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	p, err := h.Svc.Products.GetByID(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, err)
		return
	}
	if p.Stock <= 0 {
		writeError(w, http.StatusBadRequest, "product is out of stock")
		return
	}

	notified, failed, err := h.Svc.SweepProduct(ctx, p)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notified": notified,
		"failed":   failed,
	})
}

func (h *StockNotifyHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Waitlist.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
