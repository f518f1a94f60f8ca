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

	"github.com/sudanchapagain/okhati-backend/internal/catalog"
	"github.com/sudanchapagain/okhati-backend/internal/redisx"
)

type ProductsHandler struct {
	Repo  *catalog.Repo
	Redis *redis.Client
	Auth  *Authenticator
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/api/product", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/recommend", h.recommend)
		r.Get("/{productId}", h.detail)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware, RequireStaff)
			r.Post("/", h.create)
			r.Put("/{productId}", h.update)
			r.Delete("/{productId}", h.delete)
		})
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Repo.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, redisx.KeyRecommend).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
	}

	ps, err := h.Repo.Recommend(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.Redis != nil {
		if body, err := json.Marshal(ps); err == nil {
			if err := h.Redis.Set(ctx, redisx.KeyRecommend, body, redisx.TTLRecommend).Err(); err != nil {
				log.Printf("[products] cache recommend: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	d, err := h.Repo.GetProductDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.Repo.CreateProduct(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateRecommend(r.Context())
	writeJSON(w, http.StatusOK, created)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = id

	updated, err := h.Repo.UpdateProduct(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateRecommend(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.Repo.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateRecommend(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"detail": fmt.Sprintf("product %d deleted", id)})
}

func (h *ProductsHandler) invalidateRecommend(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Del(ctx, redisx.KeyRecommend).Err(); err != nil {
		log.Printf("[products] invalidate recommend cache: %v", err)
	}
}
