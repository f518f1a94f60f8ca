package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sudanchapagain/okhati-backend/internal/catalog"
	"github.com/sudanchapagain/okhati-backend/internal/checkout"
	"github.com/sudanchapagain/okhati-backend/internal/khalti"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/supabase"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

// writeDomainError maps domain errors onto the HTTP surface. Anything
// unrecognized is a 500; the process never aborts on a failing request.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr *checkout.ValidationError
		gatewayErr    *khalti.Error
		storageErr    *supabase.Error
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &gatewayErr):
		writeError(w, http.StatusBadGateway, gatewayErr.Error())
	case errors.As(err, &storageErr):
		writeError(w, http.StatusBadGateway, storageErr.Error())
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, catalog.ErrDuplicateReview):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
