package middleware

import (
	"context"
	"net/http"
	"strings"

	"modernnotes/internal/auth"
	"modernnotes/internal/model"
)

type ctxKey string

const userKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// SessionSource is satisfied by *auth.Provider.
type SessionSource interface {
	Authenticate(token string) (*auth.Session, error)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// RequireSession admits requests whose Bearer token belongs to the signed-in user.
func RequireSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			s, err := src.Authenticate(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			u := s.User
			ctx := context.WithValue(r.Context(), userKey, &u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches the user when a valid Bearer token is present and
// otherwise lets the request through anonymously.
func OptionalSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if s, err := src.Authenticate(token); err == nil {
					u := s.User
					r = r.WithContext(context.WithValue(r.Context(), userKey, &u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
