package payments

import "context"

// Intent statuses as reported by the gateway. Only IntentSucceeded
// lets an order through.
const IntentSucceeded = "succeeded"

// Webhook event types the reconciler acts on; anything else is
// acknowledged and dropped.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

type Event struct {
	ID       string
	Type     string
	IntentID string
}

// Gateway abstracts the payment processor. Amounts cross this
// boundary in minor units (cents).
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	VerifyWebhook(payload []byte, sigHeader string) (*Event, error)
}
