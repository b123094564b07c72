package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shanon-tech/commerce-api/internal/orders"
)

// Dispatcher sends transactional mail as a side channel of order and
// catalog operations. A failed send is logged and swallowed; it never
// fails or rolls back the operation that triggered it.
type Dispatcher struct {
	Mailer    Mailer
	TeamEmail string
	Log       *logrus.Logger
	Timeout   time.Duration
}

func (d *Dispatcher) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return 10 * time.Second
}

// send runs the blocking SMTP call under a bounded timeout so a slow
// provider cannot stall the HTTP response that triggered it.
func (d *Dispatcher) send(ctx context.Context, m Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Mailer.Send(m) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OrderEmails sends the paired client-confirmation + team-notification
// mail for a created or newly paid order. A missing client email is
// expected for delivery orders and skipped silently; client and team
// failures are caught independently.
func (d *Dispatcher) OrderEmails(ctx context.Context, o *orders.Order) {
	if o.Customer.Email != "" {
		m := Message{
			To:      o.Customer.Email,
			Subject: fmt.Sprintf("Order confirmation %s", o.OrderNumber),
			Body:    orderBody(o, true),
		}
		if err := d.send(ctx, m); err != nil {
			d.Log.WithError(err).WithField("order", o.OrderNumber).Warn("client order email failed")
		}
	}
	if d.TeamEmail != "" {
		m := Message{
			To:      d.TeamEmail,
			Subject: fmt.Sprintf("New order %s", o.OrderNumber),
			Body:    orderBody(o, false),
		}
		if err := d.send(ctx, m); err != nil {
			d.Log.WithError(err).WithField("order", o.OrderNumber).Warn("team order email failed")
		}
	}
}

// RestockAlert notifies one waitlist subscriber that a product is back in
// stock. The error is returned so the caller can leave the subscription
// pending and retry it on a future stock rise.
func (d *Dispatcher) RestockAlert(ctx context.Context, to, productName string, price decimal.Decimal, currency string) error {
	return d.send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("%s is back in stock", productName),
		Body: fmt.Sprintf("Good news!\n\n%s is available again for %s %s.\n\nOrder soon, stock is limited.",
			productName, price.StringFixed(2), currency),
	})
}

// NewsletterWelcome must succeed before the subscription is persisted,
// so it returns the send error to the caller.
func (d *Dispatcher) NewsletterWelcome(ctx context.Context, to string) error {
	return d.send(ctx, Message{
		To:      to,
		Subject: "Thank you for your subscription",
		Body:    "Thank you for subscribing to our newsletter! We'll keep you updated with our latest news and products.",
	})
}

// TeamNotice is a best-effort internal notification.
func (d *Dispatcher) TeamNotice(ctx context.Context, subject, body string) {
	if d.TeamEmail == "" {
		return
	}
	if err := d.send(ctx, Message{To: d.TeamEmail, Subject: subject, Body: body}); err != nil {
		d.Log.WithError(err).WithField("subject", subject).Warn("team notice failed")
	}
}

func orderBody(o *orders.Order, client bool) string {
	var b strings.Builder
	if client {
		fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order %s.\n\n", o.Customer.FirstName, o.OrderNumber)
	} else {
		fmt.Fprintf(&b, "Order %s received.\n\nCustomer: %s %s <%s> %s\n\n",
			o.OrderNumber, o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone)
	}
	for _, it := range o.Items {
		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&b, "  %s x%d  %s %s\n", it.Title, it.Quantity, lineTotal.StringFixed(2), o.Currency)
	}
	fmt.Fprintf(&b, "\nSubtotal: %s %s\nShipping: %s %s\nTotal:    %s %s\n",
		o.Subtotal.StringFixed(2), o.Currency,
		o.ShippingFee.StringFixed(2), o.Currency,
		o.Total.StringFixed(2), o.Currency)
	fmt.Fprintf(&b, "\nShipping to: %s, %s %s, %s\nPayment: %s (%s)\n",
		o.ShippingAddress.Address, o.ShippingAddress.ZipCode, o.ShippingAddress.City,
		o.ShippingAddress.Country, o.PaymentMethod, o.PaymentStatus)
	return b.String()
}
