package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
)

// CreateSession stores a new session
func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, csrf_token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.CSRFToken,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves session by its opaque ID
func (s *Storage) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, csrf_token, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`

	session := &models.Session{}

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.CSRFToken,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession deletes one session by ID
func (s *Storage) DeleteSession(ctx context.Context, sessionID string) error {
	query := `DELETE FROM sessions WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

// DeleteUserSessions deletes all sessions for a user
func (s *Storage) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	query := `DELETE FROM sessions WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// ReplaceUserSessions атомарно удаляет все сессии пользователя и
// вставляет новую. Политика "одна активная сессия" реализована явно
// как delete-all-then-insert, а не как побочный эффект порядка запросов.
func (s *Storage) ReplaceUserSessions(ctx context.Context, session *models.Session) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, session.UserID); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}

		query := `
			INSERT INTO sessions (id, user_id, csrf_token, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			session.ID,
			session.UserID,
			session.CSRFToken,
			session.ExpiresAt,
			session.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		return nil
	})
}

// DeleteExpiredSessions removes all expired sessions
func (s *Storage) DeleteExpiredSessions(ctx context.Context) (int, error) {
	query := `DELETE FROM sessions WHERE expires_at < datetime('now')`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
