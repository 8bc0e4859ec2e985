package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"vendoreval/internal/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the authenticated identity, if any.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*auth.Principal)
	return p, ok
}

// bearerToken pulls the token from the Authorization header, falling
// back to the token query parameter for EventSource clients, which
// cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Authenticate проверяет токен и кладет пользователя в контекст
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.respondError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}

		principal, err := auth.VerifyToken(token, h.Secret)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				h.respondError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			h.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ограничивает маршрут перечисленными ролями
func (h *Handler) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				h.respondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !allowed[principal.Role] {
				h.respondError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
