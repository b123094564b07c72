package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/shanon-tech/commerce-api/internal/accounts"
)

type ctxKey int

const actorKey ctxKey = iota

// Actor returns the authenticated account placed in the request
// context by the auth middleware.
func Actor(ctx context.Context) *accounts.Account {
	a, _ := ctx.Value(actorKey).(*accounts.Account)
	return a
}

type Auth struct {
	Accounts *accounts.Service
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// require validates the bearer token and checks the actor's role. An
// admin token passes superadmin-only routes never; a superadmin token
// passes both.
func (a *Auth) require(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		actor, err := a.Accounts.Verify(r.Context(), tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if role == accounts.RoleSuperAdmin && actor.Role != accounts.RoleSuperAdmin {
			writeError(w, http.StatusForbidden, "superadmin access required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// RequireAdmin admits both roles; RequireSuperAdmin only the higher one.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.require(accounts.RoleAdmin, next)
}

func (a *Auth) RequireSuperAdmin(next http.Handler) http.Handler {
	return a.require(accounts.RoleSuperAdmin, next)
}
