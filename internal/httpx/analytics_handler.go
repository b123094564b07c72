package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shanon-tech/commerce-api/internal/analytics"
)

type AnalyticsHandler struct {
	Repo *analytics.Repo
}

func (h *AnalyticsHandler) Register(r *chi.Mux, auth *Auth) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/dashboard/stats", h.dashboard)
		r.Get("/analytics/sales-over-time", h.salesOverTime)
		r.Get("/analytics/products", h.products)
		r.Get("/analytics/orders", h.orders)
		r.Get("/analytics/geographic", h.geographic)
		r.Get("/analytics/customers", h.customers)
	})
}

// queryRange reads optional startDate/endDate (YYYY-MM-DD) parameters;
// missing bounds default to year-to-date.
func queryRange(r *http.Request) analytics.Range {
	var rng analytics.Range
	if s := r.URL.Query().Get("startDate"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			rng.From = t
		}
	}
	if s := r.URL.Query().Get("endDate"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			rng.To = t
		}
	}
	return rng
}

func (h *AnalyticsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	s, err := h.Repo.Dashboard(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AnalyticsHandler) salesOverTime(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	groupBy := analytics.GroupBy(r.URL.Query().Get("groupBy"))
	data, err := h.Repo.SalesOverTime(ctx, queryRange(r), groupBy)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"salesData": data,
		"groupBy":   groupBy,
	})
}

func (h *AnalyticsHandler) products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rep, err := h.Repo.ProductPerformance(ctx, queryRange(r), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *AnalyticsHandler) orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rep, err := h.Repo.OrderAnalytics(ctx, queryRange(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *AnalyticsHandler) geographic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rep, err := h.Repo.GeographicSales(ctx, queryRange(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *AnalyticsHandler) customers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rep, err := h.Repo.CustomerAnalytics(ctx, queryRange(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
