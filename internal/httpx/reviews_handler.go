package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sudanchapagain/okhati-backend/internal/catalog"
)

type ReviewsHandler struct {
	Repo *catalog.Repo
	Auth *Authenticator
}

func (h *ReviewsHandler) Register(r *chi.Mux) {
	r.Get("/api/review/", h.list)
	r.With(h.Auth.Middleware).Post("/api/review/{productId}", h.create)
}

type createReviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewsHandler) list(w http.ResponseWriter, r *http.Request) {
	rvs, err := h.Repo.ListReviews(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rvs)
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req createReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	u, _ := currentUser(r)
	rv, err := h.Repo.CreateReview(r.Context(), catalog.Review{
		UserID:    u.ID,
		ProductID: productID,
		Name:      u.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}
