package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/shanon-tech/commerce-api/internal/kafka"
	"github.com/shanon-tech/commerce-api/internal/notify"
	"github.com/shanon-tech/commerce-api/internal/orders"
	"github.com/shanon-tech/commerce-api/internal/redisx"
)

type OrdersHandler struct {
	Repo     *orders.Repo
	Producer *kafkax.Producer
	Redis    *redis.Client
	Notify   *notify.Dispatcher
	Log      *logrus.Logger

	Service         string
	DefaultCurrency string
}

func (h *OrdersHandler) Register(r *chi.Mux, auth *Auth) {
	r.Post("/orders", h.create)
	r.Get("/orders/number/{orderNumber}", h.getByNumber)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/orders", h.list)
		r.Get("/orders/stats", h.stats)
		r.Get("/orders/status/{status}", h.listByStatus)
		r.Get("/orders/{id}", h.getByID)
		r.Put("/orders/{id}/status", h.updateStatus)
		r.Put("/orders/{id}/payment", h.updatePayment)
		r.Put("/orders/{id}/date", h.updateDate)
		r.Delete("/orders/{id}", h.remove)
	})
}

// create is the public cash/delivery entry point. Totals are taken as
// submitted; the gateway-verified flow lives on the payments routes.
func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if !decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.Create(ctx, &in, h.DefaultCurrency)
	if err != nil {
		respondError(w, err)
		return
	}

	h.Notify.OrderEmails(ctx, o)
	h.publishCreated(o, r.Header.Get("X-Request-Id"))
	h.cacheStatus(ctx, o)

	writeJSON(w, http.StatusCreated, o)
}

// getByNumber serves the public order-status lookup, cache first.
func (h *OrdersHandler) getByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, number)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Repo.GetByNumber(ctx, number)
	if err != nil {
		respondError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderNumber)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) dropStatusCache(ctx context.Context, number string) {
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, number)).Err()
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Repo.ListAll(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) listByStatus(w http.ResponseWriter, r *http.Request) {
	status := orders.Status(chi.URLParam(r, "status"))
	if !orders.ValidStatus(status) {
		respondError(w, orders.ErrInvalidStatus)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Repo.ListByStatus(ctx, status)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) getByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Repo.Stats(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !orders.ValidStatus(req.Status) {
		respondError(w, orders.ErrInvalidStatus)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	h.dropStatusCache(ctx, o.OrderNumber)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus orders.PaymentStatus `json:"paymentStatus"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !orders.ValidPaymentStatus(req.PaymentStatus) {
		respondError(w, orders.ErrInvalidStatus)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdatePaymentStatus(ctx, chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		respondError(w, err)
		return
	}
	h.dropStatusCache(ctx, o.OrderNumber)
	writeJSON(w, http.StatusOK, o)
}

// updateDate backdates an order. The admin UI submits a local
// datetime without zone; it is interpreted in server-local time.
func (h *OrdersHandler) updateDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatedAt string `json:"createdAt"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", req.CreatedAt, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "createdAt must be formatted as 2006-01-02T15:04")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateCreatedAt(ctx, chi.URLParam(r, "id"), t.UTC())
	if err != nil {
		respondError(w, err)
		return
	}
	h.dropStatusCache(ctx, o.OrderNumber)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *OrdersHandler) publishCreated(o *orders.Order, traceID string) {
	if h.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
	}
	ev.Payload = kafkax.MustMarshal(orders.OrderCreatedPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Currency:      o.Currency,
		ItemCount:     len(o.Items),
	})
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
