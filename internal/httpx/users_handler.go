package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sudanchapagain/okhati-backend/internal/auth"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

type UsersHandler struct {
	Repo *users.Repo
	Auth *Authenticator
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.With(h.Auth.Middleware).Get("/me", h.me)
		r.Put("/{userid}", h.update)
		r.Delete("/{userid}", h.delete)
	})
}

type registerUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsStaff  *bool   `json:"is_staff"`
	IsActive *bool   `json:"is_active"`
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	us, err := h.Repo.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req registerUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	u, err := h.Repo.Create(r.Context(), users.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		IsStaff:  req.IsStaff,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) me(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	fields := users.UpdateFields{
		Name:     req.Name,
		Email:    req.Email,
		IsStaff:  req.IsStaff,
		IsActive: req.IsActive,
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		fields.Password = &hashed
	}

	u, err := h.Repo.Update(r.Context(), id, fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.Repo.Delete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
