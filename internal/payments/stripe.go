package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway talks to Stripe through a circuit breaker so a
// processor outage fails fast instead of piling up blocked requests.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	cb            *gobreaker.CircuitBreaker
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "stripe",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	res, err := g.cb.Execute(func() (any, error) {
		return g.api.PaymentIntents.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	pi := res.(*stripe.PaymentIntent)
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	res, err := g.cb.Execute(func() (any, error) {
		return g.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
			Params: stripe.Params{Context: ctx},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get payment intent %s: %w", id, err)
	}
	pi := res.(*stripe.PaymentIntent)
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// VerifyWebhook checks the signature before anything else; an
// unverifiable payload is rejected outright.
func (g *StripeGateway) VerifyWebhook(payload []byte, sigHeader string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	switch out.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent from event %s: %w", ev.ID, err)
		}
		out.IntentID = pi.ID
	}
	return out, nil
}
