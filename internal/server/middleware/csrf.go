package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/famcal/internal/crypto"
	"github.com/iudanet/famcal/internal/server/handlers"
	"github.com/iudanet/famcal/pkg/api"
)

// CSRFMiddleware создает middleware проверки CSRF токена.
// Изменяющие запросы (все методы кроме GET/HEAD/OPTIONS) обязаны нести
// заголовок X-CSRF-Token, равный токену текущей сессии. Сравнение за
// константное время, несовпадение или отсутствие - отказ 403.
// Login, set-password и logout не проходят через этот middleware:
// первые два предшествуют сессии, logout не меняет ничего
// чувствительнее собственной сессии.
func CSRFMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			session, ok := handlers.SessionFromContext(r.Context())
			if !ok {
				sendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized)
				return
			}

			token := r.Header.Get(handlers.CSRFHeaderName)
			if token == "" || !crypto.ConstantTimeEquals(token, session.CSRFToken) {
				logger.Warn("csrf token mismatch",
					"method", r.Method,
					"path", r.URL.Path,
				)
				sendError(logger, w, http.StatusForbidden, api.CodeForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
