package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
)

// IssueSetupToken atomically replaces the user's setup tokens with the given one.
// Инвариант: не более одного живого токена на пользователя.
func (s *Storage) IssueSetupToken(ctx context.Context, token *models.SetupToken) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM setup_tokens WHERE user_id = ?`, token.UserID); err != nil {
			return fmt.Errorf("failed to delete prior setup tokens: %w", err)
		}

		query := `
			INSERT INTO setup_tokens (id, user_id, expires_at, created_at)
			VALUES (?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			token.ID,
			token.UserID,
			token.ExpiresAt,
			token.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert setup token: %w", err)
		}

		return nil
	})
}

// GetSetupToken retrieves a setup token by its opaque ID
func (s *Storage) GetSetupToken(ctx context.Context, tokenID string) (*models.SetupToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM setup_tokens
		WHERE id = ?
	`

	token := &models.SetupToken{}

	err := s.db.QueryRowContext(ctx, query, tokenID).Scan(
		&token.ID,
		&token.UserID,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get setup token: %w", err)
	}

	return token, nil
}

// DeleteUserSetupTokens deletes all setup tokens for a user
func (s *Storage) DeleteUserSetupTokens(ctx context.Context, userID string) (int, error) {
	query := `DELETE FROM setup_tokens WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete setup tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// DeleteExpiredSetupTokens removes all expired tokens
func (s *Storage) DeleteExpiredSetupTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM setup_tokens WHERE expires_at < datetime('now')`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired setup tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// ConsumeSetupToken применяет всю цепочку установки пароля одной транзакцией:
// проверка токена, запись хеша, удаление токенов, отзыв сессий и вставка
// новой сессии. Сбой в любом месте откатывает все; повторная попытка с уже
// израсходованным токеном чисто завершается ErrTokenNotFound.
func (s *Storage) ConsumeSetupToken(ctx context.Context, tokenID, passwordHash string, session *models.Session, now time.Time) (*models.User, error) {
	var user *models.User

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		token := &models.SetupToken{}
		err := tx.QueryRowContext(ctx,
			`SELECT id, user_id, expires_at, created_at FROM setup_tokens WHERE id = ?`,
			tokenID,
		).Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt)

		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrTokenNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get setup token: %w", err)
		}

		// Истекший токен удаляем при обнаружении, отдельного таймера нет
		if token.Expired(now) {
			if _, err := tx.ExecContext(ctx, `DELETE FROM setup_tokens WHERE id = ?`, tokenID); err != nil {
				return fmt.Errorf("failed to delete expired setup token: %w", err)
			}
			return storage.ErrTokenNotFound
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = ? WHERE id = ?`,
			passwordHash, token.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to set password hash: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return storage.ErrUserNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM setup_tokens WHERE user_id = ?`, token.UserID); err != nil {
			return fmt.Errorf("failed to delete setup tokens: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, token.UserID); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}

		session.UserID = token.UserID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, user_id, csrf_token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
			session.ID, session.UserID, session.CSRFToken, session.ExpiresAt, session.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		user, err = scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = ?`, token.UserID))
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
