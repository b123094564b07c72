package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shanon-tech/commerce-api/internal/shipping"
)

type ShippingHandler struct {
	Repo            *shipping.Repo
	DefaultCurrency string
}

func (h *ShippingHandler) Register(r *chi.Mux, auth *Auth) {
	r.Get("/shipping-fees", h.listActive)
	r.Get("/shipping-fees/country/{country}", h.getByCountry)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/shipping-fees/all", h.listAll)
		r.Post("/shipping-fees", h.create)
		r.Put("/shipping-fees/{id}", h.update)
		r.Delete("/shipping-fees/{id}", h.remove)
	})
}

func (h *ShippingHandler) listActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	fees, err := h.Repo.ListActive(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fees)
}

func (h *ShippingHandler) getByCountry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	f, err := h.Repo.GetByCountry(ctx, chi.URLParam(r, "country"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *ShippingHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	fees, err := h.Repo.ListAll(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fees)
}

type shippingFeeReq struct {
	Country  string          `json:"country"`
	Fee      decimal.Decimal `json:"shippingFee"`
	Currency string          `json:"currency"`
	IsActive *bool           `json:"isActive"`
}

func (h *ShippingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req shippingFeeReq
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Country) == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}
	if req.Currency == "" {
		req.Currency = h.DefaultCurrency
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actor := Actor(r.Context())
	f, err := h.Repo.Create(ctx, &shipping.Fee{
		Country:       req.Country,
		Fee:           req.Fee,
		Currency:      req.Currency,
		IsActive:      active,
		CreatedBy:     actor.ID,
		CreatedByRole: actor.Role,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *ShippingHandler) update(w http.ResponseWriter, r *http.Request) {
	var req shippingFeeReq
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Country) != "" {
		cur.Country = req.Country
	}
	if !req.Fee.IsZero() {
		cur.Fee = req.Fee
	}
	if req.Currency != "" {
		cur.Currency = req.Currency
	}
	if req.IsActive != nil {
		cur.IsActive = *req.IsActive
	}

	f, err := h.Repo.Update(ctx, cur)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *ShippingHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "shipping fee deleted"})
}
