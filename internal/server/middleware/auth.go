package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/famcal/internal/server/auth"
	"github.com/iudanet/famcal/internal/server/handlers"
	"github.com/iudanet/famcal/pkg/api"
)

// sendError отправляет JSON ошибку из middleware
func sendError(logger *slog.Logger, w http.ResponseWriter, statusCode int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(api.ErrorResponse{Error: code}); err != nil {
		logger.Error("failed to encode error response", slog.Any("error", err))
	}
}

// SessionMiddleware создает middleware проверки сессионной cookie.
// Валидная сессия кладет пользователя и сессию в контекст запроса,
// отсутствующая или истекшая дает 401. Истекшие сессии удаляются
// при обнаружении (lazy GC).
func SessionMiddleware(logger *slog.Logger, service *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(handlers.SessionCookieName)
			if err != nil || cookie.Value == "" {
				sendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized)
				return
			}

			session, user, err := service.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				logger.Debug("session resolution failed", slog.Any("error", err))
				sendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized)
				return
			}

			ctx := handlers.ContextWithIdentity(r.Context(), user, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
