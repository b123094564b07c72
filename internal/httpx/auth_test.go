package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shanon-tech/commerce-api/internal/accounts"
)

type singleAccountStore struct{ acct *accounts.Account }

func (s *singleAccountStore) Create(context.Context, *accounts.Account) (*accounts.Account, error) {
	return nil, accounts.ErrDuplicateEmail
}

func (s *singleAccountStore) GetByID(_ context.Context, id string) (*accounts.Account, error) {
	if s.acct != nil && s.acct.ID == id {
		return s.acct, nil
	}
	return nil, accounts.ErrNotFound
}

func (s *singleAccountStore) GetByEmail(_ context.Context, email string) (*accounts.Account, error) {
	if s.acct != nil && s.acct.Email == email {
		return s.acct, nil
	}
	return nil, accounts.ErrNotFound
}

func (s *singleAccountStore) ListByRole(context.Context, string) ([]accounts.Account, error) {
	return nil, nil
}

func (s *singleAccountStore) UpdateProfile(context.Context, *accounts.Account) (*accounts.Account, error) {
	return nil, accounts.ErrNotFound
}

func (s *singleAccountStore) SetActive(context.Context, string, bool) (*accounts.Account, error) {
	return nil, accounts.ErrNotFound
}

func (s *singleAccountStore) Delete(context.Context, string) error { return accounts.ErrNotFound }

func authFixture(t *testing.T, role string) (*Auth, string) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	acct := &accounts.Account{
		ID:           "acc-1",
		Email:        "a@example.com",
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	svc := &accounts.Service{
		Accounts: &singleAccountStore{acct: acct},
		Secret:   []byte("test-secret"),
		Log:      log,
	}
	tok, _, err := svc.Login(context.Background(), acct.Email, "hunter2")
	require.NoError(t, err)
	return &Auth{Accounts: svc}, tok
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAdminMissingToken(t *testing.T) {
	auth, _ := authFixture(t, accounts.RoleAdmin)
	rec := httptest.NewRecorder()
	auth.RequireAdmin(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminBadToken(t *testing.T) {
	auth, _ := authFixture(t, accounts.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	auth.RequireAdmin(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminAcceptsAdmin(t *testing.T) {
	auth, tok := authFixture(t, accounts.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	auth.RequireAdmin(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSuperAdminRejectsAdmin(t *testing.T) {
	auth, tok := authFixture(t, accounts.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	auth.RequireSuperAdmin(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireSuperAdminAcceptsSuperAdmin(t *testing.T) {
	auth, tok := authFixture(t, accounts.RoleSuperAdmin)
	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	auth.RequireSuperAdmin(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
