package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/user"
	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireSession rejects requests without a valid bearer session token and
// stores the signed-in user in the request context
func RequireSession(auth inbound.AuthService, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeError(w, r, http.StatusUnauthorized,
					apperrors.NewUnauthorizedError("Authorization header required"))
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("Session rejected", zap.Error(err))
				appErr := apperrors.Wrap(err, "session check failed")
				writeError(w, r, appErr.StatusCode(), appErr)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// WithUser returns a context carrying u
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the signed-in user, if any
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok && u != nil
}
