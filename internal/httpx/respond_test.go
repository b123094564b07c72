package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shanon-tech/commerce-api/internal/catalog"
	"github.com/shanon-tech/commerce-api/internal/orders"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"missing product name", (&catalog.CreateInput{Image: "x.png"}).Validate(), http.StatusBadRequest},
		{"missing product image", (&catalog.CreateInput{Name: "ESP32"}).Validate(), http.StatusBadRequest},
		{"order validation", &orders.ValidationError{Missing: []string{"customer"}}, http.StatusBadRequest},
		{"not found", orders.ErrNotFound, http.StatusNotFound},
		{"unmapped", errors.New("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tc.err)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}
