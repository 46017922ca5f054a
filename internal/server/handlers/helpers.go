package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/validation"
	"github.com/iudanet/famcal/pkg/api"
)

// SessionCookieName - имя cookie с session id
const SessionCookieName = "famcal_session"

// CSRFHeaderName - заголовок, в котором клиент возвращает CSRF токен
const CSRFHeaderName = "X-CSRF-Token"

type contextKey string

const (
	// UserKey - ключ контекста с *models.User текущей сессии
	UserKey contextKey = "user"
	// SessionKey - ключ контекста с *models.Session
	SessionKey contextKey = "session"
)

// ContextWithIdentity кладет пользователя и сессию в контекст запроса
func ContextWithIdentity(ctx context.Context, user *models.User, session *models.Session) context.Context {
	ctx = context.WithValue(ctx, UserKey, user)
	return context.WithValue(ctx, SessionKey, session)
}

// UserFromContext достает пользователя текущей сессии
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// SessionFromContext достает текущую сессию
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*models.Session)
	return session, ok
}

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с машиночитаемым кодом ошибки
func sendError(logger *slog.Logger, w http.ResponseWriter, statusCode int, code, message string) {
	resp := api.ErrorResponse{
		Error:   code,
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// toUserView строит безопасный снимок пользователя для клиента.
// Хеш пароля не попадает в ответ ни при каких условиях.
func toUserView(user *models.User) *api.UserView {
	view := &api.UserView{
		ID:            user.ID,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		Role:          string(user.Role),
		PaymentHandle: user.PaymentHandle,
		NeedsSetup:    user.NeedsSetup(),
		NeedsPassword: user.NeedsPassword(),
		CreatedAt:     user.CreatedAt.UTC().Format(time.RFC3339),
	}

	if user.Birthday != nil {
		view.Birthday = &api.BirthdayView{
			Month: int(user.Birthday.Month),
			Day:   user.Birthday.Day,
		}
	}

	if user.OnboardedAt != nil {
		s := user.OnboardedAt.UTC().Format(time.RFC3339)
		view.LastLoginAt = &s
	}

	return view
}

// parseBirthday валидирует и переводит BirthdayView в модель
func parseBirthday(view *api.BirthdayView) (*models.Birthday, error) {
	month := time.Month(view.Month)
	if err := validation.ValidateBirthday(month, view.Day); err != nil {
		return nil, err
	}
	return &models.Birthday{Month: month, Day: view.Day}, nil
}

// toUpdateView строит снимок поста; authorName подставляет вызывающий
func toUpdateView(update *models.Update, authorName string) *api.UpdateView {
	return &api.UpdateView{
		ID:         update.ID,
		AuthorID:   update.AuthorID,
		AuthorName: authorName,
		Date:       update.Date.Format("2006-01-02"),
		Title:      update.Title,
		Body:       update.Body,
		CreatedAt:  update.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  update.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
