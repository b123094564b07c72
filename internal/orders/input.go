package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateInput is the order-creation contract. Totals are taken from the
// client as submitted; they are not recomputed server-side. That mirrors
// the trust boundary of the checkout flow this service backs.
type CreateInput struct {
	Customer        *Customer        `json:"customer"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	Items           []Item           `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	ShippingFee     decimal.Decimal  `json:"shippingFee"`
	Total           decimal.Decimal  `json:"total"`
	Currency        string           `json:"currency"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	ShippingCountry string           `json:"shippingCountry"`
	FeeDetails      FeeSnapshot      `json:"shippingFeeDetails"`

	// Set by the server, never from the request body.
	Status          Status        `json:"-"`
	PaymentStatus   PaymentStatus `json:"-"`
	PaymentIntentID string        `json:"-"`
	CreatedBy       string        `json:"-"`
	CreatedByRole   string        `json:"-"`
}

// ValidationError lists the required fields missing from a create request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (in *CreateInput) Validate() error {
	var missing []string
	if in.Customer == nil {
		missing = append(missing, "customer")
	}
	if in.ShippingAddress == nil {
		missing = append(missing, "shippingAddress")
	}
	if len(in.Items) == 0 {
		missing = append(missing, "items")
	}
	if in.Subtotal.IsZero() {
		missing = append(missing, "subtotal")
	}
	if in.Total.IsZero() {
		missing = append(missing, "total")
	}
	if in.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if in.ShippingCountry == "" {
		missing = append(missing, "shippingCountry")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if !ValidPaymentMethod(in.PaymentMethod) {
		return &ValidationError{Missing: []string{"paymentMethod"}}
	}
	return nil
}

// defaults fills the server-side fields the caller left unset. Online
// submissions through this path are treated as already paid; gateway-verified
// orders go through the payment confirmation workflow instead.
func (in *CreateInput) defaults(currency string) {
	if in.Currency == "" {
		in.Currency = currency
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if in.PaymentStatus == "" {
		if in.PaymentMethod == MethodOnline {
			in.PaymentStatus = PaymentPaid
		} else {
			in.PaymentStatus = PaymentPending
		}
	}
}
