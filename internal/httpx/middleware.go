package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/sudanchapagain/okhati-backend/internal/auth"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

type ctxKey int

const userKey ctxKey = 0

// UserLoader resolves the user a bearer token was issued for.
type UserLoader interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
}

// Authenticator verifies the Authorization bearer token and loads the
// current user into the request context.
type Authenticator struct {
	Tokens auth.Tokens
	Users  UserLoader
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		email, err := a.Tokens.Subject(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		u, err := a.Users.GetByEmail(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// RequireStaff rejects non-staff callers. Must run after Middleware.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(r)
		if !ok || !u.IsStaff {
			writeError(w, http.StatusForbidden, "Access denied. Admin privileges required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) (users.User, bool) {
	u, ok := r.Context().Value(userKey).(users.User)
	return u, ok
}
