package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrNotSubscribed = errors.New("email is not subscribed")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Store interface {
	Upsert(ctx context.Context, email string, subscribed bool) (*Subscription, error)
	GetByEmail(ctx context.Context, email string) (*Subscription, error)
}

type Welcomer interface {
	NewsletterWelcome(ctx context.Context, to string) error
	TeamNotice(ctx context.Context, subject, body string)
}

type Service struct {
	Subs Store
	Mail Welcomer
	Log  *logrus.Logger
}

// Subscribe sends the welcome email before persisting; an address we
// cannot reach is not recorded as subscribed.
func (s *Service) Subscribe(ctx context.Context, email string) (*Subscription, error) {
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := s.Mail.NewsletterWelcome(ctx, email); err != nil {
		return nil, fmt.Errorf("send welcome email: %w", err)
	}
	sub, err := s.Subs.Upsert(ctx, email, true)
	if err != nil {
		return nil, err
	}
	s.Mail.TeamNotice(ctx, "New newsletter subscription", fmt.Sprintf("%s subscribed to the newsletter.", sub.Email))
	s.Log.WithField("email", sub.Email).Info("newsletter subscription added")
	return sub, nil
}

// Unsubscribe flips the flag; the row stays so resubscribes keep their
// history.
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	cur, err := s.Subs.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return ErrNotSubscribed
	}
	if err != nil {
		return err
	}
	if !cur.IsSubscribed {
		return ErrNotSubscribed
	}
	if _, err := s.Subs.Upsert(ctx, email, false); err != nil {
		return err
	}
	s.Mail.TeamNotice(ctx, "Newsletter unsubscribe", fmt.Sprintf("%s unsubscribed from the newsletter.", cur.Email))
	return nil
}
