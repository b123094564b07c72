package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shanon-tech/commerce-api/internal/kafka"
	"github.com/shanon-tech/commerce-api/internal/orders"
	"github.com/shanon-tech/commerce-api/internal/redisx"
)

var (
	// ErrPaymentIncomplete means the gateway has not reported the intent
	// as succeeded; no order may be created from it.
	ErrPaymentIncomplete = errors.New("payment has not succeeded")
)

type OrderStore interface {
	Create(ctx context.Context, in *orders.CreateInput, defaultCurrency string) (*orders.Order, error)
	MarkPaidByIntent(ctx context.Context, intentID string) (*orders.Order, bool, error)
	MarkFailedByIntent(ctx context.Context, intentID string) error
}

type Notifier interface {
	OrderEmails(ctx context.Context, o *orders.Order)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Deduper remembers processed webhook event ids so redeliveries are
// acknowledged without acting twice. An event is marked only after it
// was handled; a failed attempt stays eligible for redelivery.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type RedisDeduper struct{ RDB *redis.Client }

func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.RDB.Exists(ctx, fmt.Sprintf(redisx.KeyWebhookDedup, eventID)).Result()
	return n > 0, err
}

func (d *RedisDeduper) Mark(ctx context.Context, eventID string) error {
	key := fmt.Sprintf(redisx.KeyWebhookDedup, eventID)
	_, err := redisx.SetNXOnce(ctx, d.RDB, key, redisx.TTLWebhookDedup)
	return err
}

// Service runs the card payment workflow: intent creation before
// checkout, order creation after client-side confirmation, and webhook
// reconciliation as the authoritative record of what was actually paid.
type Service struct {
	Gateway  Gateway
	Orders   OrderStore
	Notify   Notifier
	Dedup    Deduper
	PaidProd Publisher
	Log      *logrus.Logger

	ServiceName     string
	DefaultCurrency string
}

// amountCents converts a decimal major-unit amount to the gateway's
// minor units, rounding half up.
func amountCents(total decimal.Decimal) int64 {
	return total.Shift(2).Round(0).IntPart()
}

func (s *Service) CreateIntent(ctx context.Context, total decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	if currency == "" {
		currency = s.DefaultCurrency
	}
	// Stripe wants lowercase ISO currency codes.
	return s.Gateway.CreateIntent(ctx, amountCents(total), strings.ToLower(currency), metadata)
}

// Confirm finalizes an online order after the client reports the
// payment went through. The gateway is asked directly; anything short
// of succeeded rejects the order.
func (s *Service) Confirm(ctx context.Context, intentID string, in *orders.CreateInput) (*orders.Order, error) {
	intent, err := s.Gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != IntentSucceeded {
		return nil, ErrPaymentIncomplete
	}

	in.PaymentMethod = orders.MethodOnline
	in.Status = orders.StatusConfirmed
	in.PaymentStatus = orders.PaymentPaid
	in.PaymentIntentID = intentID
	if err := in.Validate(); err != nil {
		return nil, err
	}

	o, err := s.Orders.Create(ctx, in, s.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	s.Notify.OrderEmails(ctx, o)
	s.publishPaid(o)
	s.Log.WithFields(logrus.Fields{
		"order":  o.OrderNumber,
		"intent": intentID,
	}).Info("online order confirmed")
	return o, nil
}

// HandleEvent reconciles a verified webhook event against the ledger.
// Unknown event types and events for intents with no order yet are
// acknowledged so the gateway stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, ev *Event) error {
	seen, err := s.Dedup.Seen(ctx, ev.ID)
	if err != nil {
		return err
	}
	if seen {
		s.Log.WithField("event", ev.ID).Debug("duplicate webhook event ignored")
		return nil
	}

	switch ev.Type {
	case EventPaymentSucceeded:
		o, transitioned, err := s.Orders.MarkPaidByIntent(ctx, ev.IntentID)
		if errors.Is(err, orders.ErrNotFound) {
			// Webhook arrived before ConfirmPayment created the order.
			s.Log.WithField("intent", ev.IntentID).Info("webhook for unknown intent acknowledged")
		} else if err != nil {
			return err
		} else if transitioned {
			s.Notify.OrderEmails(ctx, o)
			s.publishPaid(o)
		}
	case EventPaymentFailed:
		if err := s.Orders.MarkFailedByIntent(ctx, ev.IntentID); err != nil && !errors.Is(err, orders.ErrNotFound) {
			return err
		}
	}
	// Marked only once the event was fully handled, so a transient
	// failure above leaves the redelivery free to retry.
	return s.Dedup.Mark(ctx, ev.ID)
}

func (s *Service) publishPaid(o *orders.Order) {
	if s.PaidProd == nil {
		return
	}
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPaid,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.ID,
		Payload: kafka.MustMarshal(orders.OrderPaidPayload{
			OrderID:         o.ID,
			OrderNumber:     o.OrderNumber,
			PaymentIntentID: o.PaymentIntentID,
			Total:           o.Total,
			Currency:        o.Currency,
		}),
	}
	s.PaidProd.Publish(orders.PartitionKey(o.ID), kafka.MustMarshal(env))
}
