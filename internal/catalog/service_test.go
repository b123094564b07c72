package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts struct {
	byID map[string]*Product
}

func (f *fakeProducts) Create(_ context.Context, p *Product) (*Product, error) {
	p.ID = fmt.Sprintf("p%d", len(f.byID)+1)
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Update(_ context.Context, p *Product) (*Product, error) {
	if _, ok := f.byID[p.ID]; !ok {
		return nil, ErrNotFound
	}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) (*Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.byID, id)
	return p, nil
}

type fakeWaitlist struct {
	subs []StockNotification
}

func (f *fakeWaitlist) Create(_ context.Context, email, productID, productName string) (*StockNotification, error) {
	for _, n := range f.subs {
		if n.Email == email && n.ProductID == productID {
			return nil, ErrAlreadySubscribed
		}
	}
	n := StockNotification{ID: fmt.Sprintf("n%d", len(f.subs)+1), Email: email, ProductID: productID, ProductName: productName}
	f.subs = append(f.subs, n)
	return &n, nil
}

func (f *fakeWaitlist) PendingForProduct(_ context.Context, productID string) ([]StockNotification, error) {
	var out []StockNotification
	for _, n := range f.subs {
		if n.ProductID == productID && !n.IsNotified {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeWaitlist) MarkNotified(_ context.Context, id string) error {
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs[i].IsNotified = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (f *fakeWaitlist) DeleteByEmailProduct(_ context.Context, email, productID string) error {
	for i, n := range f.subs {
		if n.Email == email && n.ProductID == productID {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return ErrNotificationNotFound
}

type fakeRestockMail struct {
	sent []string
	fail map[string]bool
}

func (f *fakeRestockMail) RestockAlert(_ context.Context, to, _ string, _ decimal.Decimal, _ string) error {
	if f.fail[to] {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestService() (*Service, *fakeProducts, *fakeWaitlist, *fakeRestockMail) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	fp := &fakeProducts{byID: map[string]*Product{}}
	fw := &fakeWaitlist{}
	fm := &fakeRestockMail{fail: map[string]bool{}}
	return &Service{Products: fp, Waitlist: fw, Mail: fm, Log: log, UploadDir: "uploads"}, fp, fw, fm
}

func soldOutProduct(fp *fakeProducts) *Product {
	p := &Product{Name: "ESP32 DevKit", Price: decimal.NewFromInt(32), Currency: "EUR", Image: "/uploads/esp32.jpg", Stock: 0, IsActive: true}
	p, _ = fp.Create(context.Background(), p)
	return p
}

func intPtr(v int) *int { return &v }

func TestStockRiseNotifiesPendingSubscribers(t *testing.T) {
	svc, fp, fw, fm := newTestService()
	p := soldOutProduct(fp)

	_, err := svc.SubscribeRestock(context.Background(), "a@example.com", p.ID)
	require.NoError(t, err)
	_, err = svc.SubscribeRestock(context.Background(), "b@example.com", p.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), p.ID, &UpdateInput{Stock: intPtr(5)})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, fm.sent)
	for _, n := range fw.subs {
		assert.True(t, n.IsNotified)
	}
}

func TestFailedRestockSendStaysPending(t *testing.T) {
	svc, fp, fw, fm := newTestService()
	p := soldOutProduct(fp)

	_, _ = svc.SubscribeRestock(context.Background(), "ok@example.com", p.ID)
	_, _ = svc.SubscribeRestock(context.Background(), "bad@example.com", p.ID)
	fm.fail["bad@example.com"] = true

	_, err := svc.UpdateProduct(context.Background(), p.ID, &UpdateInput{Stock: intPtr(3)})
	require.NoError(t, err)

	assert.Equal(t, []string{"ok@example.com"}, fm.sent)
	pending, _ := fw.PendingForProduct(context.Background(), p.ID)
	require.Len(t, pending, 1)
	assert.Equal(t, "bad@example.com", pending[0].Email)
}

func TestNoSweepWithoutZeroToPositiveTransition(t *testing.T) {
	svc, fp, _, fm := newTestService()
	p := soldOutProduct(fp)
	p.Stock = 2
	_, _ = fp.Update(context.Background(), p)

	_, _ = svc.SubscribeRestock(context.Background(), "a@example.com", p.ID)

	// 2 -> 9 is not a restock event
	_, err := svc.UpdateProduct(context.Background(), p.ID, &UpdateInput{Stock: intPtr(9)})
	require.NoError(t, err)
	assert.Empty(t, fm.sent)
}

func TestSubscribeRestockValidation(t *testing.T) {
	svc, fp, _, _ := newTestService()
	p := soldOutProduct(fp)

	_, err := svc.SubscribeRestock(context.Background(), "not-an-email", p.ID)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SubscribeRestock(context.Background(), "a@example.com", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SubscribeRestock(context.Background(), "a@example.com", p.ID)
	require.NoError(t, err)
	_, err = svc.SubscribeRestock(context.Background(), "a@example.com", p.ID)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestUpdateInputApply(t *testing.T) {
	base := Product{Name: "Old", Price: decimal.NewFromInt(10), Image: "img.jpg", Stock: 4}

	name := "New"
	out, err := (&UpdateInput{Name: &name}).apply(base)
	require.NoError(t, err)
	assert.Equal(t, "New", out.Name)
	assert.Equal(t, 4, out.Stock)

	empty := ""
	_, err = (&UpdateInput{Image: &empty}).apply(base)
	assert.ErrorIs(t, err, ErrImageRequired)

	bad := []string{"Gadgets"}
	_, err = (&UpdateInput{Category: &bad}).apply(base)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	neg := -1
	_, err = (&UpdateInput{Stock: &neg}).apply(base)
	assert.ErrorIs(t, err, ErrNegativeStock)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), &CreateInput{Name: "X"}, "", "")
	assert.ErrorIs(t, err, ErrImageRequired)

	p, err := svc.CreateProduct(context.Background(), &CreateInput{
		Name: "Nucleo", Price: decimal.NewFromInt(600), Currency: "EUR",
		Image: "/uploads/nucleo.jpg", Category: []string{"STM32"},
	}, "admin-1", "admin")
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, "admin-1", p.CreatedBy)
}
