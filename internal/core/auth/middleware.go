package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/google/uuid"
)

type contextKey struct{}

var userIDKey contextKey

// ContextWithUserID attaches the authenticated user id to the context.
func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Middleware rejects requests without a valid bearer token and stores the
// token's subject in the request context.
func Middleware(manager *JWTManager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			userID, err := manager.Parse(tokenString)
			if err != nil {
				log.Warn("Token rejected",
					logger.StringField("path", r.URL.Path),
					logger.ErrorField("error", err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}
