package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/models"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserIDSource yields the local pseudo-identity.
type UserIDSource interface {
	UserID(ctx context.Context) (string, error)
}

// Identity resolves the local user id once per request and stores it in the
// request context. There is no credential check: the id is self-asserted.
func Identity(src UserIDSource, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := src.UserID(r.Context())
			if err != nil {
				logger.Error("resolve user id", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load local identity"))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
