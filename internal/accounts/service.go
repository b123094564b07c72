package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbiddenSelf      = errors.New("cannot modify your own account")
)

const tokenTTL = 24 * time.Hour

// Claims is the token payload. Only the account id and role travel in
// the token; everything else is looked up fresh.
type Claims struct {
	AccountID string `json:"id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type Store interface {
	Create(ctx context.Context, a *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ListByRole(ctx context.Context, role string) ([]Account, error)
	UpdateProfile(ctx context.Context, a *Account) (*Account, error)
	SetActive(ctx context.Context, id string, active bool) (*Account, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	Accounts Store
	Secret   []byte
	Log      *logrus.Logger
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	a, err := s.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !a.IsActive {
		return "", nil, ErrAccountInactive
	}

	tok, err := s.issue(a)
	if err != nil {
		return "", nil, err
	}
	s.Log.WithFields(logrus.Fields{"account_id": a.ID, "role": a.Role}).Info("account logged in")
	return tok, a, nil
}

// Verify confirms the token and that the account behind it still
// exists and is active.
func (s *Service) Verify(ctx context.Context, token string) (*Account, error) {
	claims, err := s.Parse(token)
	if err != nil {
		return nil, err
	}
	a, err := s.Accounts.GetByID(ctx, claims.AccountID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, ErrAccountInactive
	}
	return a, nil
}

// Refresh exchanges a still-valid token for a fresh one with a new
// expiry.
func (s *Service) Refresh(ctx context.Context, token string) (string, error) {
	a, err := s.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return s.issue(a)
}

func (s *Service) Parse(token string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (s *Service) issue(a *Account) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: a.ID,
		Role:      a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

type CreateInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

var ErrInvalidRole = errors.New("role must be admin or superadmin")

func (s *Service) CreateAccount(ctx context.Context, in CreateInput) (*Account, error) {
	if !ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.Accounts.Create(ctx, &Account{
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: string(hash),
		IsActive:     true,
	})
}

type UpdateInput struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UpdateAccount applies the non-nil fields of in. A new password is
// re-hashed; the stored hash is never returned to callers.
func (s *Service) UpdateAccount(ctx context.Context, id string, in UpdateInput) (*Account, error) {
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		a.Email = *in.Email
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = string(hash)
	}
	return s.Accounts.UpdateProfile(ctx, a)
}

// ToggleActive flips an account's active flag. Callers may not
// deactivate themselves; that would lock them out mid-session.
func (s *Service) ToggleActive(ctx context.Context, actorID, id string) (*Account, error) {
	if actorID == id {
		return nil, ErrForbiddenSelf
	}
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Accounts.SetActive(ctx, id, !a.IsActive)
}

func (s *Service) DeleteAccount(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrForbiddenSelf
	}
	return s.Accounts.Delete(ctx, id)
}
