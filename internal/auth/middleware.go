package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/periodiq/periodiq/internal/httputil"
)

type contextKey string

const ContextUser contextKey = "user"

// Middleware validates the bearer JWT on protected routes.
type Middleware struct {
	secret string
}

func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: secret}
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		claims, err := ParseToken(token, m.secret)
		if err != nil {
			status := http.StatusUnauthorized
			code := "UNAUTHORIZED"
			if err == ErrTokenExpired {
				code = "SESSION_EXPIRED"
			}
			httputil.WriteError(w, status, code, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUser, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ContextUser).(string); ok {
		return v
	}
	return ""
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}
