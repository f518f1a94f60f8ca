package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sudanchapagain/okhati-backend/internal/checkout"
	"github.com/sudanchapagain/okhati-backend/internal/khalti"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &checkout.ValidationError{Reason: "cart is empty"}, http.StatusBadRequest},
		{"gateway rejection", &khalti.Error{StatusCode: 400, Body: "bad amount"}, http.StatusBadGateway},
		{"gateway unreachable", &khalti.Error{Body: "dial tcp: connection refused", Err: errors.New("dial tcp: connection refused")}, http.StatusBadGateway},
		{"wrapped gateway error", fmt.Errorf("initiate payment: %w", &khalti.Error{Body: "timeout"}), http.StatusBadGateway},
		{"order not found", orders.ErrNotFound, http.StatusNotFound},
		{"email taken", users.ErrEmailTaken, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
