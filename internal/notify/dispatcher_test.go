package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanon-tech/commerce-api/internal/orders"
)

type fakeMailer struct {
	mu    sync.Mutex
	sent  []Message
	fail  map[string]error // keyed by recipient
	block time.Duration
}

func (f *fakeMailer) Send(m Message) error {
	if f.block > 0 {
		time.Sleep(f.block)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[m.To]; ok {
		return err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.To
	}
	return out
}

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sampleOrder(email string) *orders.Order {
	return &orders.Order{
		OrderNumber: "ORD-20250307-0001",
		Customer:    orders.Customer{FirstName: "Nour", LastName: "Bhs", Email: email},
		Items: []orders.Item{
			{Title: "ESP32 DevKit", Price: decimal.NewFromInt(32), Quantity: 1},
		},
		Subtotal:      decimal.NewFromInt(32),
		ShippingFee:   decimal.NewFromInt(8),
		Total:         decimal.NewFromInt(40),
		Currency:      "EUR",
		PaymentMethod: orders.MethodDelivery,
		PaymentStatus: orders.PaymentPending,
	}
}

func TestOrderEmailsSendsClientAndTeam(t *testing.T) {
	fm := &fakeMailer{}
	d := &Dispatcher{Mailer: fm, TeamEmail: "team@example.com", Log: quietLog()}

	d.OrderEmails(context.Background(), sampleOrder("nour@example.com"))
	assert.Equal(t, []string{"nour@example.com", "team@example.com"}, fm.recipients())
}

func TestOrderEmailsSkipsMissingClientEmail(t *testing.T) {
	fm := &fakeMailer{}
	d := &Dispatcher{Mailer: fm, TeamEmail: "team@example.com", Log: quietLog()}

	d.OrderEmails(context.Background(), sampleOrder(""))
	assert.Equal(t, []string{"team@example.com"}, fm.recipients())
}

func TestOrderEmailsFailuresAreIndependent(t *testing.T) {
	fm := &fakeMailer{fail: map[string]error{"nour@example.com": errors.New("mailbox full")}}
	d := &Dispatcher{Mailer: fm, TeamEmail: "team@example.com", Log: quietLog()}

	// client send fails, team send still goes out and nothing panics or errors
	d.OrderEmails(context.Background(), sampleOrder("nour@example.com"))
	assert.Equal(t, []string{"team@example.com"}, fm.recipients())
}

func TestRestockAlertReturnsSendError(t *testing.T) {
	fm := &fakeMailer{fail: map[string]error{"a@example.com": errors.New("bounced")}}
	d := &Dispatcher{Mailer: fm, Log: quietLog()}

	err := d.RestockAlert(context.Background(), "a@example.com", "ESP32 DevKit", decimal.NewFromInt(32), "EUR")
	require.Error(t, err)

	require.NoError(t, d.RestockAlert(context.Background(), "b@example.com", "ESP32 DevKit", decimal.NewFromInt(32), "EUR"))
	assert.Len(t, fm.recipients(), 1)
}

func TestSendBoundedByTimeout(t *testing.T) {
	fm := &fakeMailer{block: 200 * time.Millisecond}
	d := &Dispatcher{Mailer: fm, Log: quietLog(), Timeout: 20 * time.Millisecond}

	start := time.Now()
	err := d.send(context.Background(), Message{To: "x@example.com"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}
