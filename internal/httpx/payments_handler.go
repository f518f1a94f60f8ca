package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sudanchapagain/okhati-backend/internal/checkout"
	"github.com/sudanchapagain/okhati-backend/internal/khalti"
)

// PaymentLookup is the provider query the handler needs for session status.
type PaymentLookup interface {
	Lookup(ctx context.Context, pidx string) (khalti.LookupResponse, error)
}

type PaymentsHandler struct {
	Checkout *checkout.Service
	Gateway  PaymentLookup
	Auth     *Authenticator
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.With(h.Auth.Middleware).Post("/api/initiate", h.initiate)
	r.With(h.Auth.Middleware, RequireStaff).Get("/api/payment/lookup/{pidx}", h.lookup)
}

func (h *PaymentsHandler) initiate(w http.ResponseWriter, r *http.Request) {
	var req checkout.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// the authenticated user is authoritative, not the posted currentUser
	u, _ := currentUser(r)
	req.CurrentUser = checkout.Buyer{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsStaff:  u.IsStaff,
		IsActive: u.IsActive,
	}

	result, err := h.Checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentsHandler) lookup(w http.ResponseWriter, r *http.Request) {
	pidx := chi.URLParam(r, "pidx")
	if pidx == "" {
		writeError(w, http.StatusBadRequest, "pidx is required")
		return
	}

	resp, err := h.Gateway.Lookup(r.Context(), pidx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
