package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/redisx"
)

// OrderStore is what the handler needs from the database layer.
type OrderStore interface {
	GetAll(ctx context.Context) ([]orders.Order, error)
	GetByID(ctx context.Context, id int64) (orders.Order, error)
	GetByUser(ctx context.Context, userID int64) ([]orders.Order, error)
	MarkDelivered(ctx context.Context, id int64) error
}

type OrdersHandler struct {
	Store OrderStore
	Redis *redis.Client
	Auth  *Authenticator
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/order", func(r chi.Router) {
		r.Use(h.Auth.Middleware)

		r.Get("/orderbyid/{orderId}", h.getByID)
		r.Get("/orderbyuser/{userid}", h.getByUser)

		r.Group(func(r chi.Router) {
			r.Use(RequireStaff)
			r.Get("/", h.list)
			r.Get("/export-csv", h.exportCSV)
			r.Patch("/{orderId}/deliver", h.markDelivered)
		})
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	os, err := h.Store.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	ctx := r.Context()
	u, _ := currentUser(r)

	key := fmt.Sprintf(redisx.KeyOrder, id)
	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, key).Bytes(); err == nil {
			var o orders.Order
			if json.Unmarshal(cached, &o) == nil {
				if o.UserID != u.ID && !u.IsStaff {
					writeError(w, http.StatusForbidden, "not your order")
					return
				}
				writeJSON(w, http.StatusOK, o)
				return
			}
		}
	}

	o, err := h.Store.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if o.UserID != u.ID && !u.IsStaff {
		writeError(w, http.StatusForbidden, "not your order")
		return
	}

	if h.Redis != nil {
		if body, err := json.Marshal(o); err == nil {
			if err := h.Redis.Set(ctx, key, body, redisx.TTLOrderCache).Err(); err != nil {
				log.Printf("[orders] cache order %d: %v", id, err)
			}
		}
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, _ := currentUser(r)
	if userID != u.ID && !u.IsStaff {
		writeError(w, http.StatusForbidden, "not your orders")
		return
	}

	os, err := h.Store.GetByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) exportCSV(w http.ResponseWriter, r *http.Request) {
	os, err := h.Store.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(orders.ExportCSV(os)))
}

func (h *OrdersHandler) markDelivered(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	ctx := r.Context()

	if err := h.Store.MarkDelivered(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrder, id)).Err(); err != nil {
			log.Printf("[orders] invalidate order %d cache: %v", id, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": fmt.Sprintf("order %d marked as delivered", id)})
}
