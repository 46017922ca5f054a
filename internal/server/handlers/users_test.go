package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/auth"
	"github.com/iudanet/famcal/pkg/api"
)

func strPtr(s string) *string {
	return &s
}

func TestUsersHandler_Create(t *testing.T) {
	env := setupAuthTest(t)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	// Без пароля аккаунт создается в состоянии "пароль не установлен"
	w := httptest.NewRecorder()
	handler.Create(w, postJSON(t, "/api/v1/users", api.CreateUserRequest{
		Username:    "Newbie",
		DisplayName: "New Member",
	}))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "newbie", resp.User.Username) // нормализован
	assert.Equal(t, "user", resp.User.Role)
	assert.True(t, resp.User.NeedsPassword)

	// Логин такого пользователя идет через setup flow
	result, err := env.service.Login(context.Background(), "newbie", "")
	require.NoError(t, err)
	assert.NotNil(t, result.SetupToken)
	assert.Nil(t, result.Session)
}

func TestUsersHandler_Create_WithPassword(t *testing.T) {
	env := setupAuthTest(t)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	w := httptest.NewRecorder()
	handler.Create(w, postJSON(t, "/api/v1/users", api.CreateUserRequest{
		Username: "alice",
		Password: "initial password 1",
		Role:     "admin",
	}))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.User.NeedsPassword)
	assert.Equal(t, "admin", resp.User.Role)

	result, err := env.service.Login(context.Background(), "alice", "initial password 1")
	require.NoError(t, err)
	assert.NotNil(t, result.Session)
}

func TestUsersHandler_Create_Validation(t *testing.T) {
	env := setupAuthTest(t)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	tests := []struct {
		name string
		req  api.CreateUserRequest
	}{
		{
			name: "invalid username",
			req:  api.CreateUserRequest{Username: "a b"},
		},
		{
			name: "invalid role",
			req:  api.CreateUserRequest{Username: "validname", Role: "superuser"},
		},
		{
			name: "short password",
			req:  api.CreateUserRequest{Username: "validname", Password: "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Create(w, postJSON(t, "/api/v1/users", tt.req))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUsersHandler_Create_Duplicate(t *testing.T) {
	env := setupAuthTest(t)
	env.createUser(t, "taken", "correct password 1", models.RoleUser)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	w := httptest.NewRecorder()
	handler.Create(w, postJSON(t, "/api/v1/users", api.CreateUserRequest{
		Username: "Taken", // регистронезависимый конфликт
	}))

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, api.CodeConflict, resp.Error)
}

func TestUsersHandler_Update_LastAdminDemote(t *testing.T) {
	env := setupAuthTest(t)
	admin := env.createUser(t, "boss", "correct password 1", models.RoleAdmin)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	req := postJSON(t, "/api/v1/users/"+admin.ID, api.UpdateUserRequest{
		Role: strPtr("user"),
	})
	req.SetPathValue("id", admin.ID)

	w := httptest.NewRecorder()
	handler.Update(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot demote the last admin")
}

func TestUsersHandler_Update_ResetOnboarding(t *testing.T) {
	env := setupAuthTest(t)
	user := env.createUser(t, "jane.doe", "correct password 1", models.RoleUser)

	// Завершаем onboarding
	ctx := context.Background()
	handle := "@jane-pay"
	_, err := env.service.UpdateProfile(ctx, user.ID, &auth.ProfileChanges{
		Birthday:      &models.Birthday{Month: 3, Day: 8},
		PaymentHandle: &handle,
	})
	require.NoError(t, err)

	handler := NewUsersHandler(setupTestLogger(), env.store)

	req := postJSON(t, "/api/v1/users/"+user.ID, api.UpdateUserRequest{
		ResetOnboarding: true,
	})
	req.SetPathValue("id", user.ID)

	w := httptest.NewRecorder()
	handler.Update(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Nil(t, resp.User.Birthday)
	assert.Nil(t, resp.User.PaymentHandle)
	assert.Nil(t, resp.User.LastLoginAt)
	assert.True(t, resp.User.NeedsSetup)
}

func TestUsersHandler_Update_NotFound(t *testing.T) {
	env := setupAuthTest(t)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	id := uuid.New().String()
	req := postJSON(t, "/api/v1/users/"+id, api.UpdateUserRequest{
		DisplayName: strPtr("Ghost"),
	})
	req.SetPathValue("id", id)

	w := httptest.NewRecorder()
	handler.Update(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsersHandler_Delete(t *testing.T) {
	env := setupAuthTest(t)
	env.createUser(t, "boss", "correct password 1", models.RoleAdmin)
	user := env.createUser(t, "alice", "correct password 1", models.RoleUser)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+user.ID, nil)
	req.SetPathValue("id", user.ID)

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUsersHandler_Delete_LastAdmin(t *testing.T) {
	env := setupAuthTest(t)
	admin := env.createUser(t, "boss", "correct password 1", models.RoleAdmin)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+admin.ID, nil)
	req.SetPathValue("id", admin.ID)

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot delete the last admin")
}

func TestUsersHandler_ResetPassword(t *testing.T) {
	env := setupAuthTest(t)
	user := env.createUser(t, "alice", "old password 123", models.RoleUser)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	ctx := context.Background()
	login, err := env.service.Login(ctx, "alice", "old password 123")
	require.NoError(t, err)

	req := postJSON(t, "/api/v1/users/"+user.ID+"/reset-password", api.ResetPasswordRequest{
		Password: "brand new password",
	})
	req.SetPathValue("id", user.ID)

	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Старая сессия не пережила сброс
	_, _, err = env.service.ResolveSession(ctx, login.Session.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	// Новый пароль работает, старый нет
	_, err = env.service.Login(ctx, "alice", "old password 123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	result, err := env.service.Login(ctx, "alice", "brand new password")
	require.NoError(t, err)
	assert.NotNil(t, result.Session)
}

func TestUsersHandler_List(t *testing.T) {
	env := setupAuthTest(t)
	env.createUser(t, "bob", "correct password 1", models.RoleUser)
	env.createUser(t, "alice", "correct password 1", models.RoleAdmin)
	handler := NewUsersHandler(setupTestLogger(), env.store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.UsersResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "alice", resp.Users[0].Username)
	assert.Equal(t, "bob", resp.Users[1].Username)
}
