package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/handlers"
	"github.com/iudanet/famcal/pkg/api"
)

// AdminMiddleware создает middleware проверки роли.
// Аутентифицированный, но не административный запрос получает 403.
func AdminMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := handlers.UserFromContext(r.Context())
			if !ok {
				sendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized)
				return
			}

			if user.Role != models.RoleAdmin {
				logger.Warn("admin route denied",
					"user_id", user.ID,
					"path", r.URL.Path,
				)
				sendError(logger, w, http.StatusForbidden, api.CodeForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
