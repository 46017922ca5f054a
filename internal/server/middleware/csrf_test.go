package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/handlers"
	"github.com/iudanet/famcal/pkg/api"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withIdentity(req *http.Request, role models.Role, csrfToken string) *http.Request {
	user := &models.User{ID: "u1", Username: "alice", Role: role}
	session := &models.Session{ID: "s1", UserID: "u1", CSRFToken: csrfToken}
	ctx := handlers.ContextWithIdentity(context.Background(), user, session)
	return req.WithContext(ctx)
}

func TestCSRFMiddleware(t *testing.T) {
	handler := CSRFMiddleware(setupTestLogger())(okHandler())

	tests := []struct {
		name       string
		method     string
		header     string
		wantStatus int
	}{
		{
			name:       "GET passes without header",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with matching token",
			method:     http.MethodPost,
			header:     "session-csrf",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST without header is forbidden",
			method:     http.MethodPost,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with wrong token is forbidden",
			method:     http.MethodPost,
			header:     "stolen-token",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "DELETE without header is forbidden",
			method:     http.MethodDelete,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/updates", nil)
			req = withIdentity(req, models.RoleUser, "session-csrf")
			if tt.header != "" {
				req.Header.Set(handlers.CSRFHeaderName, tt.header)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusForbidden {
				var resp api.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, api.CodeForbidden, resp.Error)
			}
		})
	}
}

func TestCSRFMiddleware_NoSession(t *testing.T) {
	handler := CSRFMiddleware(setupTestLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/updates", nil)
	req.Header.Set(handlers.CSRFHeaderName, "whatever")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	handler := AdminMiddleware(setupTestLogger())(okHandler())

	// Обычному пользователю закрыто
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req = withIdentity(req, models.RoleUser, "csrf")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, api.CodeForbidden, resp.Error)

	// Админу открыто
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req = withIdentity(req, models.RoleAdmin, "csrf")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminMiddleware_NoSession(t *testing.T) {
	handler := AdminMiddleware(setupTestLogger())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
