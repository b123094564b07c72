package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	byID    map[string]*Account
	byEmail map[string]*Account
}

func newFakeStore(accts ...*Account) *fakeStore {
	f := &fakeStore{byID: map[string]*Account{}, byEmail: map[string]*Account{}}
	for _, a := range accts {
		f.byID[a.ID] = a
		f.byEmail[a.Email] = a
	}
	return f
}

func (f *fakeStore) Create(_ context.Context, a *Account) (*Account, error) {
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, ErrDuplicateEmail
	}
	a.ID = "acc-" + a.Email
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a
	return a, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Account, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListByRole(_ context.Context, role string) ([]Account, error) {
	var out []Account
	for _, a := range f.byID {
		if a.Role == role {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, a *Account) (*Account, error) {
	if _, ok := f.byID[a.ID]; !ok {
		return nil, ErrNotFound
	}
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a
	return a, nil
}

func (f *fakeStore) SetActive(_ context.Context, id string, active bool) (*Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.IsActive = active
	return a, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	a, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byEmail, a.Email)
	return nil
}

func testAccount(t *testing.T, password string, active bool) *Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &Account{
		ID:           "acc-1",
		Email:        "admin@example.com",
		Name:         "Admin",
		Role:         RoleAdmin,
		PasswordHash: string(hash),
		IsActive:     active,
	}
}

func newService(store Store) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &Service{Accounts: store, Secret: []byte("test-secret"), Log: log}
}

func TestLoginAndVerify(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	tok, got, err := svc.Login(context.Background(), "admin@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	require.NotEmpty(t, tok)

	verified, err := svc.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, a.ID, verified.ID)
	assert.Equal(t, RoleAdmin, verified.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(newFakeStore(testAccount(t, "hunter2", true)))

	_, _, err := svc.Login(context.Background(), "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc := newService(newFakeStore(testAccount(t, "hunter2", false)))

	_, _, err := svc.Login(context.Background(), "admin@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	claims := Claims{
		AccountID: a.ID,
		Role:      a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.Secret)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	other := &Service{Accounts: svc.Accounts, Secret: []byte("other-secret"), Log: svc.Log}
	tok, err := other.issue(a)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshIssuesNewToken(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	tok, _, err := svc.Login(context.Background(), "admin@example.com", "hunter2")
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), tok)
	require.NoError(t, err)

	claims, err := svc.Parse(fresh)
	require.NoError(t, err)
	assert.Equal(t, a.ID, claims.AccountID)
}

func TestCreateAccountHashesPassword(t *testing.T) {
	svc := newService(newFakeStore())

	a, err := svc.CreateAccount(context.Background(), CreateInput{
		Email: "new@example.com", Name: "New", Password: "s3cret", Role: RoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.NotEqual(t, "s3cret", a.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("s3cret")))
}

func TestCreateAccountRejectsUnknownRole(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.CreateAccount(context.Background(), CreateInput{
		Email: "x@example.com", Password: "pw", Role: "root",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSelfModificationBlocked(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	_, err := svc.ToggleActive(context.Background(), a.ID, a.ID)
	assert.ErrorIs(t, err, ErrForbiddenSelf)

	err = svc.DeleteAccount(context.Background(), a.ID, a.ID)
	assert.ErrorIs(t, err, ErrForbiddenSelf)
}

func TestToggleActiveFlips(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	got, err := svc.ToggleActive(context.Background(), "someone-else", a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = svc.ToggleActive(context.Background(), "someone-else", a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestUpdateAccountChangesPassword(t *testing.T) {
	a := testAccount(t, "hunter2", true)
	svc := newService(newFakeStore(a))

	name := "New Name"
	pass := "correct horse"
	got, err := svc.UpdateAccount(context.Background(), a.ID, UpdateInput{Name: &name, Password: &pass})
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	_, _, err = svc.Login(context.Background(), a.Email, "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), a.Email, "correct horse")
	assert.NoError(t, err)
}
