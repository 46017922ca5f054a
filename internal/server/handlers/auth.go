package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/famcal/internal/server/auth"
	"github.com/iudanet/famcal/internal/validation"
	"github.com/iudanet/famcal/pkg/api"
)

// AuthHandler обрабатывает запросы аутентификации и профиля
type AuthHandler struct {
	logger  *slog.Logger
	service *auth.Service
	devMode bool // в dev режиме cookie ставится без Secure
}

// NewAuthHandler создает новый handler для аутентификации
func NewAuthHandler(logger *slog.Logger, service *auth.Service, devMode bool) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
		devMode: devMode,
	}
}

// setSessionCookie ставит cookie с session id.
// HttpOnly и SameSite=Strict всегда, Secure вне локальной разработки.
// Значение cookie недоступно скриптам страницы.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   !h.devMode,
		Expires:  expiresAt,
	})
}

// clearSessionCookie сбрасывает cookie сессии
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   !h.devMode,
		MaxAge:   -1,
	})
}

// Login обрабатывает POST /api/v1/auth/login
// Исходы: сессия (пароль верен), setup flow (пароля нет),
// либо один и тот же generic отказ для неизвестного username
// и неверного пароля.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	if err := validation.ValidateUsername(validation.NormalizeUsername(req.Username)); err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	result, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			sendError(h.logger, w, http.StatusUnauthorized, api.CodeInvalidCredentials, "")
			return
		}
		h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	// Пароль не установлен: setup token вместо сессии, cookie не ставим
	if result.SetupToken != nil {
		resp := api.LoginResponse{
			NeedsPasswordSet: true,
			SetupToken:       result.SetupToken.ID,
			Username:         result.User.Username,
			DisplayName:      result.User.DisplayName,
		}
		sendJSON(h.logger, w, resp, http.StatusOK)
		return
	}

	h.setSessionCookie(w, result.Session.ID, result.Session.ExpiresAt)

	resp := api.LoginResponse{
		User:      toUserView(result.User),
		CSRFToken: result.Session.CSRFToken,
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// SetPassword обрабатывает POST /api/v1/auth/set-password
// Расходует setup token, устанавливает пароль и сразу выдает сессию
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode set-password request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	if req.SetupToken == "" {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "setupToken is required")
		return
	}

	user, session, err := h.service.SetPassword(ctx, req.SetupToken, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort):
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "password too short")
		case errors.Is(err, auth.ErrSetupTokenInvalid):
			sendError(h.logger, w, http.StatusUnauthorized, api.CodeInvalidSetupToken, "")
		default:
			h.logger.ErrorContext(ctx, "set-password failed", slog.Any("error", err))
			sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		}
		return
	}

	h.setSessionCookie(w, session.ID, session.ExpiresAt)

	resp := api.SetPasswordResponse{
		User:      toUserView(user),
		CSRFToken: session.CSRFToken,
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Всегда успешен: отсутствие или невалидность cookie не ошибка.
// CSRF здесь сознательно не проверяется - запрос не меняет ничего
// чувствительнее собственной сессии.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(ctx, cookie.Value); err != nil {
			h.logger.WarnContext(ctx, "failed to delete session on logout", slog.Any("error", err))
		}
	}

	h.clearSessionCookie(w)
	sendJSON(h.logger, w, api.LogoutResponse{OK: true}, http.StatusOK)
}

// CSRF обрабатывает GET /api/v1/auth/csrf
// Отдает CSRF токен текущей сессии (для восстановления после перезагрузки страницы)
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "")
		return
	}

	sendJSON(h.logger, w, api.CSRFResponse{CSRFToken: session.CSRFToken}, http.StatusOK)
}

// Me обрабатывает GET /api/v1/me
// Возвращает снимок текущего пользователя с вычисленным needsSetup
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "")
		return
	}

	sendJSON(h.logger, w, api.MeResponse{User: toUserView(user)}, http.StatusOK)
}

// UpdateProfile обрабатывает PUT /api/v1/me/profile
// Частичное обновление: непереданные поля не трогаются
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "")
		return
	}

	var req api.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode profile request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	changes, err := profileChanges(&req)
	if err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}
	if changes.Empty() {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "at least one field is required")
		return
	}

	updated, err := h.service.UpdateProfile(ctx, user.ID, changes)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update profile", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	sendJSON(h.logger, w, api.MeResponse{User: toUserView(updated)}, http.StatusOK)
}

// profileChanges валидирует запрос и переводит его в auth.ProfileChanges
func profileChanges(req *api.UpdateProfileRequest) (*auth.ProfileChanges, error) {
	changes := &auth.ProfileChanges{}

	if req.DisplayName != nil {
		if err := validation.ValidateDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
		changes.DisplayName = req.DisplayName
	}

	if req.Birthday != nil {
		birthday, err := parseBirthday(req.Birthday)
		if err != nil {
			return nil, err
		}
		changes.Birthday = birthday
	}

	if req.PaymentHandle != nil {
		if err := validation.ValidatePaymentHandle(*req.PaymentHandle); err != nil {
			return nil, err
		}
		changes.PaymentHandle = req.PaymentHandle
	}

	return changes, nil
}
