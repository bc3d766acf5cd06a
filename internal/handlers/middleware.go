package handlers

import (
	"context"
	"net/http"
	"strings"

	"order-dashboard/internal/auth"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
)

type contextKey string

const claimsContextKey contextKey = "authClaims"

// ClaimsFromContext возвращает claims аутентифицированного пользователя.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// AuthMiddleware проверяет Bearer токен и кладет claims в контекст запроса.
func AuthMiddleware(tokens TokenManager, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeErrorResponse(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeErrorResponse(w, http.StatusUnauthorized, "Authorization header must be 'Bearer {token}'")
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			if log != nil {
				log.WithError(err).Debug("Token validation failed")
			}
			writeErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole пропускает только пользователей с указанной ролью.
// Должен стоять после AuthMiddleware.
func RequireRole(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		if claims.Role != string(role) {
			writeErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		next(w, r)
	}
}
