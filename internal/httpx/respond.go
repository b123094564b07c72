package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shanon-tech/commerce-api/internal/accounts"
	"github.com/shanon-tech/commerce-api/internal/catalog"
	"github.com/shanon-tech/commerce-api/internal/orders"
	"github.com/shanon-tech/commerce-api/internal/payments"
	"github.com/shanon-tech/commerce-api/internal/shipping"
	"github.com/shanon-tech/commerce-api/internal/subscriptions"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// respondError maps domain errors onto the HTTP taxonomy. Anything
// unmapped is an internal error and keeps its detail out of the body.
func respondError(w http.ResponseWriter, err error) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrNotificationNotFound),
		errors.Is(err, shipping.ErrNotFound),
		errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, subscriptions.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrAlreadySubscribed),
		errors.Is(err, shipping.ErrDuplicateCountry),
		errors.Is(err, accounts.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payments.ErrPaymentIncomplete),
		errors.Is(err, catalog.ErrInvalidEmail),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrImageRequired),
		errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, catalog.ErrNegativeStock),
		errors.Is(err, subscriptions.ErrInvalidEmail),
		errors.Is(err, subscriptions.ErrNotSubscribed),
		errors.Is(err, accounts.ErrInvalidRole),
		errors.Is(err, orders.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials),
		errors.Is(err, accounts.ErrInvalidToken),
		errors.Is(err, accounts.ErrAccountInactive):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, accounts.ErrForbiddenSelf):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
