package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vistamarket/marketplace-gateway/internal/config"
	"github.com/vistamarket/marketplace-gateway/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// APIKeyAuth middleware validates the service API key from the "api_key"
// header.
func APIKeyAuth(cfg config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("api_key")

			if apiKey == "" {
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			valid := false
			for _, validKey := range cfg.APIKeys {
				if apiKey == validKey {
					valid = true
					break
				}
			}

			if !valid {
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuth resolves the bearer token into a session and stores it on
// the request context. Requests without a valid session are rejected.
func SessionAuth(sessions *session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: session token required", http.StatusUnauthorized)
				return
			}

			sess, ok := sessions.Get(token)
			if !ok {
				http.Error(w, "Unauthorized: session expired or unknown", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermiso gates a route on a session permission. Must run after
// SessionAuth.
func RequirePermiso(permiso string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFrom(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: session required", http.StatusUnauthorized)
				return
			}

			if !sess.Identity.Has(permiso) {
				http.Error(w, "Forbidden: missing permission "+permiso, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFrom returns the session stored by SessionAuth.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
