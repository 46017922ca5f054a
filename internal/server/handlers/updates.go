package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
	"github.com/iudanet/famcal/internal/validation"
	"github.com/iudanet/famcal/pkg/api"
)

// UpdatesHandler обрабатывает CRUD постов "что нового"
type UpdatesHandler struct {
	logger  *slog.Logger
	updates storage.UpdateStorage
	users   storage.UserStorage
}

// NewUpdatesHandler создает новый handler постов
func NewUpdatesHandler(logger *slog.Logger, updates storage.UpdateStorage, users storage.UserStorage) *UpdatesHandler {
	return &UpdatesHandler{
		logger:  logger,
		updates: updates,
		users:   users,
	}
}

// parseDateRange разбирает query-параметры from/to (YYYY-MM-DD)
func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	const layout = "2006-01-02"

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return from, to, fmt.Errorf("from and to query parameters are required")
	}

	from, err = time.Parse(layout, fromStr)
	if err != nil {
		return from, to, fmt.Errorf("invalid from date: %s", fromStr)
	}
	to, err = time.Parse(layout, toStr)
	if err != nil {
		return from, to, fmt.Errorf("invalid to date: %s", toStr)
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("to must not be before from")
	}

	return from, to, nil
}

// displayNames строит карту id -> отображаемое имя для подстановки авторов
func (h *UpdatesHandler) displayNames(ctx context.Context) (map[string]string, error) {
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		name := user.DisplayName
		if name == "" {
			name = user.Username
		}
		names[user.ID] = name
	}
	return names, nil
}

// List обрабатывает GET /api/v1/updates?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *UpdatesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := parseDateRange(r)
	if err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	updates, err := h.updates.ListUpdatesBetween(ctx, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list updates", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	names, err := h.displayNames(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	views := make([]*api.UpdateView, 0, len(updates))
	for _, update := range updates {
		views = append(views, toUpdateView(update, names[update.AuthorID]))
	}

	sendJSON(h.logger, w, api.UpdatesResponse{Updates: views}, http.StatusOK)
}

// validateUpdateFields проверяет дату, заголовок и текст поста
func validateUpdateFields(dateStr, title, body string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return date, fmt.Errorf("invalid date: %s", dateStr)
	}
	if strings.TrimSpace(title) == "" {
		return date, fmt.Errorf("title is required")
	}
	if len(title) > validation.MaxTitleLen {
		return date, fmt.Errorf("title must not exceed %d characters", validation.MaxTitleLen)
	}
	if len(body) > validation.MaxBodyLen {
		return date, fmt.Errorf("body must not exceed %d characters", validation.MaxBodyLen)
	}
	return date, nil
}

// Create обрабатывает POST /api/v1/updates
func (h *UpdatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "")
		return
	}

	var req api.CreateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create update request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	date, err := validateUpdateFields(req.Date, req.Title, req.Body)
	if err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	now := time.Now()
	update := &models.Update{
		ID:        uuid.New().String(),
		AuthorID:  user.ID,
		Date:      date,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.updates.CreateUpdate(ctx, update); err != nil {
		h.logger.ErrorContext(ctx, "failed to create update", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	h.logger.InfoContext(ctx, "update created",
		slog.String("update_id", update.ID),
		slog.String("author_id", user.ID))

	authorName := user.DisplayName
	if authorName == "" {
		authorName = user.Username
	}
	sendJSON(h.logger, w, api.UpdateResponse{Update: toUpdateView(update, authorName)}, http.StatusCreated)
}

// canEdit проверяет право на изменение поста: автор или админ
func canEdit(user *models.User, update *models.Update) bool {
	return user.Role == models.RoleAdmin || user.ID == update.AuthorID
}

// Edit обрабатывает PUT /api/v1/updates/{id}
func (h *UpdatesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "")
		return
	}

	updateID := r.PathValue("id")

	var req api.EditUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode edit update request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	date, err := validateUpdateFields(req.Date, req.Title, req.Body)
	if err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	update, err := h.updates.GetUpdateByID(ctx, updateID)
	if err != nil {
		if errors.Is(err, storage.ErrUpdateNotFound) {
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get update", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	if !canEdit(user, update) {
		sendError(h.logger, w, http.StatusForbidden, api.CodeForbidden, "")
		return
	}

	update.Date = date
	update.Title = strings.TrimSpace(req.Title)
	update.Body = req.Body
	update.UpdatedAt = time.Now()

	if err := h.updates.EditUpdate(ctx, update); err != nil {
		if errors.Is(err, storage.ErrUpdateNotFound) {
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
			return
		}
		h.logger.ErrorContext(ctx, "failed to edit update", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	h.logger.InfoContext(ctx, "update edited", slog.String("update_id", update.ID))

	authorName := user.DisplayName
	if authorName == "" {
		authorName = user.Username
	}
	sendJSON(h.logger, w, api.UpdateResponse{Update: toUpdateView(update, authorName)}, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/updates/{id}
func (h *UpdatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "")
		return
	}

	updateID := r.PathValue("id")

	update, err := h.updates.GetUpdateByID(ctx, updateID)
	if err != nil {
		if errors.Is(err, storage.ErrUpdateNotFound) {
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get update", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	if !canEdit(user, update) {
		sendError(h.logger, w, http.StatusForbidden, api.CodeForbidden, "")
		return
	}

	if err := h.updates.DeleteUpdate(ctx, updateID); err != nil {
		if errors.Is(err, storage.ErrUpdateNotFound) {
			sendError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete update", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	h.logger.InfoContext(ctx, "update deleted", slog.String("update_id", updateID))

	w.WriteHeader(http.StatusNoContent)
}
