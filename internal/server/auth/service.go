// Package auth реализует жизненный цикл аутентификации: логин,
// установку первого пароля по setup token, сессии и onboarding.
// Состояние не держится в памяти между запросами - каждое решение
// заново выводится из персистентного состояния, поэтому сервис
// безопасен при конкурентных запросах за один и тот же аккаунт.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/famcal/internal/crypto"
	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
	"github.com/iudanet/famcal/internal/validation"
)

var (
	// ErrInvalidCredentials возвращается и для неизвестного username, и для
	// неверного пароля - различать их нельзя (enumeration защита)
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSetupTokenInvalid возвращается для отсутствующего, истекшего или
	// уже израсходованного setup token
	ErrSetupTokenInvalid = errors.New("invalid or expired setup token")

	// ErrSessionNotFound возвращается для отсутствующей или истекшей сессии
	ErrSessionNotFound = errors.New("session not found")

	// ErrPasswordTooShort возвращается до хеширования, если пароль короче минимума
	ErrPasswordTooShort = errors.New("password too short")
)

const (
	// DefaultSessionTTL - срок жизни сессии по умолчанию
	DefaultSessionTTL = 30 * 24 * time.Hour
	// DefaultSetupTokenTTL - срок жизни setup token
	DefaultSetupTokenTTL = 15 * time.Minute
)

// Service управляет аутентификацией, сессиями и onboarding
type Service struct {
	logger        *slog.Logger
	users         storage.UserStorage
	sessions      storage.SessionStorage
	tokens        storage.SetupTokenStorage
	sessionTTL    time.Duration
	setupTokenTTL time.Duration
	now           func() time.Time
}

// NewService создает новый auth сервис
func NewService(logger *slog.Logger, users storage.UserStorage, sessions storage.SessionStorage, tokens storage.SetupTokenStorage, sessionTTL, setupTokenTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if setupTokenTTL <= 0 {
		setupTokenTTL = DefaultSetupTokenTTL
	}
	return &Service{
		logger:        logger,
		users:         users,
		sessions:      sessions,
		tokens:        tokens,
		sessionTTL:    sessionTTL,
		setupTokenTTL: setupTokenTTL,
		now:           time.Now,
	}
}

// LoginResult описывает исход успешного обращения к Login.
// Ровно одно из двух: либо Session (пароль проверен), либо
// SetupToken (пароля нет, нужна установка).
type LoginResult struct {
	User       *models.User
	Session    *models.Session
	SetupToken *models.SetupToken
}

// Login принимает решение по попытке входа.
// Неизвестный username и неверный пароль неразличимы для клиента.
// Пользователь без пароля получает setup token, сессия не создается.
// Успешный вход отзывает все прежние сессии пользователя и создает одну
// новую: политика "одна активная сессия". Два одновременных логина оба
// успешны, каждый отзовет сессию другого - побеждает последний.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = validation.NormalizeUsername(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Пароль не установлен: присланный пароль игнорируем,
	// выдаем setup token вместо сессии
	if user.NeedsPassword() {
		token, err := s.issueSetupToken(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "setup token issued on login",
			slog.String("user_id", user.ID))

		return &LoginResult{User: user, SetupToken: token}, nil
	}

	ok, err := crypto.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "login failed: wrong password",
			slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	session, err := s.newSession(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.ReplaceUserSessions(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to replace sessions: %w", err)
	}

	user, err = s.finalizeOnboarding(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username))

	return &LoginResult{User: user, Session: session}, nil
}

// SetPassword расходует setup token и устанавливает первый пароль.
// Вся цепочка (хеш, удаление токена, отзыв сессий, новая сессия)
// применяется одной транзакцией хранилища. Повторное использование
// токена дает ErrSetupTokenInvalid.
func (s *Service) SetPassword(ctx context.Context, tokenID, password string) (*models.User, *models.Session, error) {
	// Длина проверяется до дорогого хеширования
	if err := validation.ValidatePassword(password); err != nil {
		return nil, nil, ErrPasswordTooShort
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	session, err := s.newSession("") // UserID заполнит хранилище из токена
	if err != nil {
		return nil, nil, err
	}

	user, err := s.tokens.ConsumeSetupToken(ctx, tokenID, hash, session, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, nil, ErrSetupTokenInvalid
		}
		return nil, nil, fmt.Errorf("failed to consume setup token: %w", err)
	}

	user, err = s.finalizeOnboarding(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "password set via setup token",
		slog.String("user_id", user.ID))

	return user, session, nil
}

// ResolveSession проверяет cookie-токен и возвращает сессию вместе с
// актуальным снимком пользователя. Истекшие сессии удаляются при
// обнаружении (lazy GC) - проверка на lookup остается авторитетной,
// фоновая чистка лишь гигиена.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*models.Session, *models.User, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Expired(s.now()) {
		_ = s.sessions.DeleteSession(ctx, session.ID)
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Пользователь удален, сессия осиротела
			_ = s.sessions.DeleteSession(ctx, session.ID)
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to get session user: %w", err)
	}

	return session, user, nil
}

// Logout удаляет одну сессию. Отсутствующая сессия не ошибка.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.DeleteSession(ctx, sessionID)
	if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RevokeUserSessions отзывает все сессии пользователя
func (s *Service) RevokeUserSessions(ctx context.Context, userID string) error {
	if _, err := s.sessions.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// ProfileChanges описывает частичное обновление профиля.
// nil-поле означает "не менять", это partial-update, а не перезапись.
type ProfileChanges struct {
	DisplayName   *string
	Birthday      *models.Birthday
	PaymentHandle *string
}

// Empty сообщает, что изменений нет
func (c *ProfileChanges) Empty() bool {
	return c.DisplayName == nil && c.Birthday == nil && c.PaymentHandle == nil
}

// UpdateProfile сливает присланные поля в профиль и, если после слияния
// user-аккаунт впервые имеет и день рождения, и платежный реквизит,
// завершает onboarding отметкой времени. Это единственный писатель
// отметки помимо успешного логина, предикат у них общий.
func (s *Service) UpdateProfile(ctx context.Context, userID string, changes *ProfileChanges) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if changes.DisplayName != nil {
		user.DisplayName = *changes.DisplayName
	}
	if changes.Birthday != nil {
		user.Birthday = changes.Birthday
	}
	if changes.PaymentHandle != nil {
		user.PaymentHandle = changes.PaymentHandle
	}

	if user.OnboardedAt == nil && !user.NeedsSetup() {
		now := s.now()
		user.OnboardedAt = &now

		s.logger.InfoContext(ctx, "onboarding completed",
			slog.String("user_id", user.ID))
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// issueSetupToken выдает новый setup token, инвалидируя прежние
func (s *Service) issueSetupToken(ctx context.Context, userID string) (*models.SetupToken, error) {
	id, err := crypto.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate setup token: %w", err)
	}

	now := s.now()
	token := &models.SetupToken{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now.Add(s.setupTokenTTL),
		CreatedAt: now,
	}

	if err := s.tokens.IssueSetupToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to issue setup token: %w", err)
	}

	return token, nil
}

// newSession генерирует сессию с двумя независимыми случайными токенами
func (s *Service) newSession(userID string) (*models.Session, error) {
	id, err := crypto.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	csrfToken, err := crypto.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	now := s.now()
	return &models.Session{
		ID:        id,
		UserID:    userID,
		CSRFToken: csrfToken,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}, nil
}

// finalizeOnboarding ставит отметку завершения onboarding, если она еще
// не стоит и требования уже выполнены (для админов - сразу).
// После первой отметки значение заморожено и больше не обновляется.
func (s *Service) finalizeOnboarding(ctx context.Context, user *models.User) (*models.User, error) {
	if user.OnboardedAt != nil || user.NeedsSetup() {
		return user, nil
	}

	now := s.now()
	user.OnboardedAt = &now

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to stamp onboarding: %w", err)
	}

	return user, nil
}

// SessionTTL возвращает настроенный срок жизни сессии (для cookie MaxAge)
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}
