package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shanon-tech/commerce-api/internal/accounts"
)

type AccountsHandler struct {
	Svc *accounts.Service
}

func (h *AccountsHandler) Register(r *chi.Mux, auth *Auth) {
	r.Post("/auth/login", h.login)
	r.Get("/auth/verify", h.verify)
	r.Post("/auth/refresh", h.refresh)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSuperAdmin)
		r.Get("/admins", h.listAdmins)
		r.Post("/admins", h.createAccount)
		r.Put("/admins/{id}", h.updateAccount)
		r.Put("/admins/{id}/status", h.toggleActive)
		r.Delete("/admins/{id}", h.removeAccount)
	})
}

func (h *AccountsHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tok, a, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "account": a})
}

func (h *AccountsHandler) verify(w http.ResponseWriter, r *http.Request) {
	tok := bearerToken(r)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Svc.Verify(ctx, tok)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AccountsHandler) refresh(w http.ResponseWriter, r *http.Request) {
	tok := bearerToken(r)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	fresh, err := h.Svc.Refresh(ctx, tok)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": fresh})
}

func (h *AccountsHandler) listAdmins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	supers, err := h.Svc.Accounts.ListByRole(ctx, accounts.RoleSuperAdmin)
	if err != nil {
		respondError(w, err)
		return
	}
	admins, err := h.Svc.Accounts.ListByRole(ctx, accounts.RoleAdmin)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, append(supers, admins...))
}

func (h *AccountsHandler) createAccount(w http.ResponseWriter, r *http.Request) {
	var in accounts.CreateInput
	if !decode(w, r, &in) {
		return
	}
	if in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if in.Role == "" {
		in.Role = accounts.RoleAdmin
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Svc.CreateAccount(ctx, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AccountsHandler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var in accounts.UpdateInput
	if !decode(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Svc.UpdateAccount(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AccountsHandler) toggleActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actor := Actor(r.Context())
	a, err := h.Svc.ToggleActive(ctx, actor.ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AccountsHandler) removeAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actor := Actor(r.Context())
	if err := h.Svc.DeleteAccount(ctx, actor.ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
