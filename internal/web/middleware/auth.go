package middleware

import (
	"net/http"
	"strings"

	"github.com/khaledsukkar2/swiftcrud/internal/web/auth"
)

// AuthConfig configures the auth middleware
type AuthConfig struct {
	// Tokens validates bearer tokens
	Tokens *auth.TokenService

	// WriteOnly restricts the check to requests that can mutate state
	// (POST, PUT, DELETE), leaving reads open
	WriteOnly bool
}

// Auth requires a valid bearer token, optionally only for mutating requests
func Auth(config AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.WriteOnly && !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			if _, err := config.Tokens.Validate(parts[1]); err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
