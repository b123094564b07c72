package subscriptions

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct{ byEmail map[string]*Subscription }

func (m *memStore) Upsert(_ context.Context, email string, subscribed bool) (*Subscription, error) {
	s, ok := m.byEmail[email]
	if !ok {
		s = &Subscription{ID: "sub-" + email, Email: email}
		m.byEmail[email] = s
	}
	s.IsSubscribed = subscribed
	return s, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*Subscription, error) {
	if s, ok := m.byEmail[email]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

type fakeWelcomer struct {
	welcomeErr error
	welcomes   int
	notices    int
}

func (f *fakeWelcomer) NewsletterWelcome(context.Context, string) error {
	f.welcomes++
	return f.welcomeErr
}

func (f *fakeWelcomer) TeamNotice(context.Context, string, string) { f.notices++ }

func newTestService(mail *fakeWelcomer) (*Service, *memStore) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := &memStore{byEmail: map[string]*Subscription{}}
	return &Service{Subs: store, Mail: mail, Log: log}, store
}

func TestSubscribe(t *testing.T) {
	mail := &fakeWelcomer{}
	svc, store := newTestService(mail)

	sub, err := svc.Subscribe(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, 1, mail.welcomes)
	assert.Equal(t, 1, mail.notices)
	assert.Contains(t, store.byEmail, "reader@example.com")
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	mail := &fakeWelcomer{}
	svc, _ := newTestService(mail)

	_, err := svc.Subscribe(context.Background(), "not an email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Zero(t, mail.welcomes)
}

func TestSubscribeNotPersistedWhenWelcomeFails(t *testing.T) {
	mail := &fakeWelcomer{welcomeErr: errors.New("smtp down")}
	svc, store := newTestService(mail)

	_, err := svc.Subscribe(context.Background(), "reader@example.com")
	require.Error(t, err)
	assert.NotContains(t, store.byEmail, "reader@example.com")
	assert.Zero(t, mail.notices)
}

func TestUnsubscribe(t *testing.T) {
	mail := &fakeWelcomer{}
	svc, store := newTestService(mail)

	_, err := svc.Subscribe(context.Background(), "reader@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(context.Background(), "reader@example.com"))
	assert.False(t, store.byEmail["reader@example.com"].IsSubscribed)

	// Already unsubscribed or never seen both report the same thing.
	assert.ErrorIs(t, svc.Unsubscribe(context.Background(), "reader@example.com"), ErrNotSubscribed)
	assert.ErrorIs(t, svc.Unsubscribe(context.Background(), "ghost@example.com"), ErrNotSubscribed)
}
