package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/famcal/internal/crypto"
	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
	"github.com/iudanet/famcal/internal/validation"
	"github.com/iudanet/famcal/pkg/api"
)

// UsersHandler обрабатывает административное управление аккаунтами.
// Все маршруты закрыты middleware RequireAdmin.
type UsersHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
}

// NewUsersHandler создает новый handler управления аккаунтами
func NewUsersHandler(logger *slog.Logger, users storage.UserStorage) *UsersHandler {
	return &UsersHandler{
		logger: logger,
		users:  users,
	}
}

// List обрабатывает GET /api/v1/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	views := make([]*api.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}

	sendJSON(h.logger, w, api.UsersResponse{Users: views}, http.StatusOK)
}

// Create обрабатывает POST /api/v1/users
// Без пароля аккаунт создается в состоянии "пароль не установлен":
// первый логин выдаст setup token
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create user request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	username := validation.NormalizeUsername(req.Username)
	if err := validation.ValidateUsername(username); err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "role must be user or admin")
		return
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		DisplayName: req.DisplayName,
		Role:        role,
		CreatedAt:   time.Now(),
	}

	if req.Password != "" {
		if err := validation.ValidatePassword(req.Password); err != nil {
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
			return
		}
		hash, err := crypto.HashPassword(req.Password)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
			sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
			return
		}
		user.PasswordHash = &hash
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			sendError(h.logger, w, http.StatusConflict, api.CodeConflict, "username already taken")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	h.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))

	sendJSON(h.logger, w, api.UserResponse{User: toUserView(user)}, http.StatusCreated)
}

// Update обрабатывает PATCH /api/v1/users/{id}
// Частичное редактирование; resetOnboarding очищает день рождения,
// реквизит и отметку onboarding - пользователь пройдет настройку заново
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "user id is required")
		return
	}

	var req api.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update user request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	if req.Username != nil {
		username := validation.NormalizeUsername(*req.Username)
		if err := validation.ValidateUsername(username); err != nil {
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
			return
		}
		user.Username = username
	}
	if req.DisplayName != nil {
		if err := validation.ValidateDisplayName(*req.DisplayName); err != nil {
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
			return
		}
		user.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "role must be user or admin")
			return
		}
		user.Role = role
	}
	if req.Birthday != nil {
		birthday, err := parseBirthday(req.Birthday)
		if err != nil {
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
			return
		}
		user.Birthday = birthday
	}
	if req.PaymentHandle != nil {
		if err := validation.ValidatePaymentHandle(*req.PaymentHandle); err != nil {
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
			return
		}
		user.PaymentHandle = req.PaymentHandle
	}
	if req.ResetOnboarding {
		user.Birthday = nil
		user.PaymentHandle = nil
		user.OnboardedAt = nil
	}

	if err := h.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
		case errors.Is(err, storage.ErrUserAlreadyExists):
			sendError(h.logger, w, http.StatusConflict, api.CodeConflict, "username already taken")
		case errors.Is(err, storage.ErrLastAdmin):
			sendError(h.logger, w, http.StatusConflict, api.CodeConflict, "cannot demote the last admin")
		default:
			h.logger.ErrorContext(ctx, "failed to update user", slog.Any("error", err))
			sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		}
		return
	}

	h.logger.InfoContext(ctx, "user updated", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.UserResponse{User: toUserView(user)}, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/users/{id}
// Сессии, setup tokens и посты удаляются каскадом
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "user id is required")
		return
	}

	if err := h.users.DeleteUser(ctx, userID); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
		case errors.Is(err, storage.ErrLastAdmin):
			sendError(h.logger, w, http.StatusConflict, api.CodeConflict, "cannot delete the last admin")
		default:
			h.logger.ErrorContext(ctx, "failed to delete user", slog.Any("error", err))
			sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		}
		return
	}

	h.logger.InfoContext(ctx, "user deleted", slog.String("user_id", userID))

	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword обрабатывает POST /api/v1/users/{id}/reset-password
// Принудительная смена пароля: вместе с новым хешем атомарно
// отзываются все сессии и setup tokens пользователя, украденная
// сессия сброс не переживает
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "user id is required")
		return
	}

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode reset password request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	if err := h.users.ResetPasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
			return
		}
		h.logger.ErrorContext(ctx, "failed to reset password", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	h.logger.InfoContext(ctx, "password reset by admin", slog.String("user_id", userID))

	sendJSON(h.logger, w, api.LogoutResponse{OK: true}, http.StatusOK)
}
