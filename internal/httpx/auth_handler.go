package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sudanchapagain/okhati-backend/internal/auth"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

type AuthHandler struct {
	Repo   *users.Repo
	Tokens auth.Tokens
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/login/", h.login)
}

type loginResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
	JWTToken string `json:"jwtToken"`
}

// login takes the OAuth2 password form (username = email) and returns the
// user profile with a fresh bearer token.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	u, err := h.Repo.GetByEmail(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusNotFound, "Invalid Credentials")
		return
	}
	if !auth.VerifyPassword(u.Password, password) {
		writeError(w, http.StatusNotFound, "Incorrect password")
		return
	}

	token, err := h.Tokens.Issue(u.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsStaff:  u.IsStaff,
		IsActive: u.IsActive,
		JWTToken: token,
	})
}
