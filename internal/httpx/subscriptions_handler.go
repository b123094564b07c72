package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shanon-tech/commerce-api/internal/subscriptions"
)

type SubscriptionsHandler struct {
	Svc  *subscriptions.Service
	Repo *subscriptions.Repo
}

func (h *SubscriptionsHandler) Register(r *chi.Mux, auth *Auth) {
	r.Post("/subscriptions", h.subscribe)
	r.Post("/subscriptions/unsubscribe", h.unsubscribe)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/subscriptions", h.list)
	})
}

type subscriptionReq struct {
	Email string `json:"email"`
}

func (h *SubscriptionsHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscriptionReq
	if !decode(w, r, &req) {
		return
	}

	// Includes a synchronous welcome-email send.
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sub, err := h.Svc.Subscribe(ctx, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionsHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscriptionReq
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.Svc.Unsubscribe(ctx, req.Email); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}

func (h *SubscriptionsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	subs, err := h.Repo.ListSubscribed(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}
