// Package server собирает HTTP роутер из handlers и middleware
package server

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/famcal/internal/server/auth"
	"github.com/iudanet/famcal/internal/server/config"
	"github.com/iudanet/famcal/internal/server/handlers"
	"github.com/iudanet/famcal/internal/server/middleware"
	"github.com/iudanet/famcal/internal/server/storage"
)

// Stores объединяет хранилища, нужные роутеру
type Stores struct {
	Users   storage.UserStorage
	Updates storage.UpdateStorage
}

// NewRouter собирает полный HTTP handler сервера.
// login/set-password открыты, но под rate limit; logout сознательно
// не требует ни сессии, ни CSRF; остальные маршруты за session
// middleware, изменяющие - еще и за CSRF, административные - за
// проверкой роли.
func NewRouter(logger *slog.Logger, cfg *config.Config, service *auth.Service, stores Stores, version string) http.Handler {
	mux := http.NewServeMux()

	authHandler := handlers.NewAuthHandler(logger, service, cfg.DevMode)
	usersHandler := handlers.NewUsersHandler(logger, stores.Users)
	updatesHandler := handlers.NewUpdatesHandler(logger, stores.Updates, stores.Users)
	calendarHandler := handlers.NewCalendarHandler(logger, stores.Users, stores.Updates)
	healthHandler := handlers.NewHealthHandler(logger, version)

	session := middleware.SessionMiddleware(logger, service)
	csrf := middleware.CSRFMiddleware(logger)
	admin := middleware.AdminMiddleware(logger)
	rateLimit := middleware.RateLimitMiddleware(cfg.LoginRateLimit, cfg.LoginRateWindow, logger)

	authed := func(h http.HandlerFunc) http.Handler {
		return session(csrf(h))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return session(csrf(admin(h)))
	}

	mux.Handle("GET /api/v1/health", http.HandlerFunc(healthHandler.Health))

	mux.Handle("POST /api/v1/auth/login", rateLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/auth/set-password", rateLimit(http.HandlerFunc(authHandler.SetPassword)))
	mux.Handle("POST /api/v1/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/v1/auth/csrf", authed(authHandler.CSRF))

	mux.Handle("GET /api/v1/me", authed(authHandler.Me))
	mux.Handle("PUT /api/v1/me/profile", authed(authHandler.UpdateProfile))

	mux.Handle("GET /api/v1/calendar", authed(calendarHandler.Get))

	mux.Handle("GET /api/v1/updates", authed(updatesHandler.List))
	mux.Handle("POST /api/v1/updates", authed(updatesHandler.Create))
	mux.Handle("PUT /api/v1/updates/{id}", authed(updatesHandler.Edit))
	mux.Handle("DELETE /api/v1/updates/{id}", authed(updatesHandler.Delete))

	mux.Handle("GET /api/v1/users", adminOnly(usersHandler.List))
	mux.Handle("POST /api/v1/users", adminOnly(usersHandler.Create))
	mux.Handle("PATCH /api/v1/users/{id}", adminOnly(usersHandler.Update))
	mux.Handle("DELETE /api/v1/users/{id}", adminOnly(usersHandler.Delete))
	mux.Handle("POST /api/v1/users/{id}/reset-password", adminOnly(usersHandler.ResetPassword))

	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}
