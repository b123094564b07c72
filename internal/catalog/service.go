package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidEmail = errors.New("invalid email format")

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type ProductStore interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}

type WaitlistStore interface {
	Create(ctx context.Context, email, productID, productName string) (*StockNotification, error)
	PendingForProduct(ctx context.Context, productID string) ([]StockNotification, error)
	MarkNotified(ctx context.Context, id string) error
	DeleteByEmailProduct(ctx context.Context, email, productID string) error
}

type RestockMailer interface {
	RestockAlert(ctx context.Context, to, productName string, price decimal.Decimal, currency string) error
}

type Service struct {
	Products  ProductStore
	Waitlist  WaitlistStore
	Mail      RestockMailer
	Log       *logrus.Logger
	UploadDir string
}

func (s *Service) CreateProduct(ctx context.Context, in *CreateInput, actorID, actorRole string) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	p := &Product{
		Name:          in.Name,
		Price:         in.Price,
		Currency:      in.Currency,
		Image:         in.Image,
		HoverImage:    in.HoverImage,
		Category:      in.Category,
		Description:   in.Description,
		Features:      in.Features,
		Stock:         in.Stock,
		IsActive:      active,
		CreatedBy:     actorID,
		CreatedByRole: actorRole,
	}
	if p.Category == nil {
		p.Category = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return s.Products.Create(ctx, p)
}

// UpdateProduct applies the patch and, when the stock transitions from
// zero to positive, runs the restock sweep for that product's waitlist.
func (s *Service) UpdateProduct(ctx context.Context, id string, in *UpdateInput) (*Product, error) {
	cur, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := in.apply(*cur)
	if err != nil {
		return nil, err
	}
	updated, err := s.Products.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	if cur.Stock == 0 && updated.Stock > 0 {
		// Sweep errors never fail the product update.
		if _, _, err := s.SweepProduct(ctx, updated); err != nil {
			s.Log.WithError(err).WithField("product", updated.ID).Warn("restock sweep failed")
		}
	}
	return updated, nil
}

// SweepProduct mails every pending waitlist subscriber for p and marks
// the successful ones notified. A failed send leaves that subscription
// pending so a future stock rise retries it. Two concurrent sweeps for
// the same product can double-send; accepted, concurrent admin edits of
// one product are rare and the alert is harmless when duplicated.
func (s *Service) SweepProduct(ctx context.Context, p *Product) (notified int, failed []string, err error) {
	pending, err := s.Waitlist.PendingForProduct(ctx, p.ID)
	if err != nil {
		return 0, nil, err
	}
	for _, n := range pending {
		if err := s.Mail.RestockAlert(ctx, n.Email, p.Name, p.Price, p.Currency); err != nil {
			s.Log.WithError(err).WithField("email", n.Email).Warn("restock alert failed")
			failed = append(failed, n.Email)
			continue
		}
		if err := s.Waitlist.MarkNotified(ctx, n.ID); err != nil {
			s.Log.WithError(err).WithField("id", n.ID).Warn("mark notified failed")
			continue
		}
		notified++
	}
	return notified, failed, nil
}

// DeleteProduct hard-deletes the row, then removes the product's image
// files. File removal is best-effort: a missing or undeletable file is
// logged and never fails the delete.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.Products.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeImage(p.Image)
	s.removeImage(p.HoverImage)
	return nil
}

func (s *Service) removeImage(url string) {
	if url == "" {
		return
	}
	name := path.Base(url)
	if name == "" || name == "." || name == "/" {
		return
	}
	if err := os.Remove(filepath.Join(s.UploadDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.Log.WithError(err).WithField("image", name).Warn("image cleanup failed")
	}
}

// SubscribeRestock joins the public restock waitlist for a product.
func (s *Service) SubscribeRestock(ctx context.Context, email, productID string) (*StockNotification, error) {
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.Waitlist.Create(ctx, email, p.ID, p.Name)
}

func (s *Service) UnsubscribeRestock(ctx context.Context, email, productID string) error {
	return s.Waitlist.DeleteByEmailProduct(ctx, email, productID)
}
