package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
)

const userColumns = `id, username, display_name, password_hash, role,
		birthday_month, birthday_day, payment_handle, onboarded_at, created_at`

// scanner покрывает *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// scanUser читает одну строку users с маппингом nullable колонок
func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var (
		passwordHash  sql.NullString
		birthdayMonth sql.NullInt64
		birthdayDay   sql.NullInt64
		paymentHandle sql.NullString
		onboardedAt   sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&passwordHash,
		&user.Role,
		&birthdayMonth,
		&birthdayDay,
		&paymentHandle,
		&onboardedAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if birthdayMonth.Valid && birthdayDay.Valid {
		user.Birthday = &models.Birthday{
			Month: time.Month(birthdayMonth.Int64),
			Day:   int(birthdayDay.Int64),
		}
	}
	if paymentHandle.Valid {
		user.PaymentHandle = &paymentHandle.String
	}
	if onboardedAt.Valid {
		user.OnboardedAt = &onboardedAt.Time
	}

	return user, nil
}

// userArgs раскладывает nullable поля пользователя в аргументы запроса
func userArgs(user *models.User) (passwordHash, paymentHandle sql.NullString, month, day sql.NullInt64, onboardedAt sql.NullTime) {
	if user.PasswordHash != nil {
		passwordHash = sql.NullString{String: *user.PasswordHash, Valid: true}
	}
	if user.PaymentHandle != nil {
		paymentHandle = sql.NullString{String: *user.PaymentHandle, Valid: true}
	}
	if user.Birthday != nil {
		month = sql.NullInt64{Int64: int64(user.Birthday.Month), Valid: true}
		day = sql.NullInt64{Int64: int64(user.Birthday.Day), Valid: true}
	}
	if user.OnboardedAt != nil {
		onboardedAt = sql.NullTime{Time: *user.OnboardedAt, Valid: true}
	}
	return
}

// isUsernameConflict проверяет ошибку на нарушение уникальности username
func isUsernameConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.username")
}

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, display_name, password_hash, role,
			birthday_month, birthday_day, payment_handle, onboarded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	passwordHash, paymentHandle, month, day, onboardedAt := userArgs(user)

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		passwordHash,
		user.Role,
		month,
		day,
		paymentHandle,
		onboardedAt,
		user.CreatedAt,
	)

	if err != nil {
		if isUsernameConflict(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves user by normalized username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ListUsers retrieves all users ordered by username
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*models.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

// UpdateUser updates user information
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Проверяем инвариант последнего админа до записи
		var currentRole models.Role
		err := tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, user.ID).Scan(&currentRole)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get current role: %w", err)
		}

		if currentRole == models.RoleAdmin && user.Role != models.RoleAdmin {
			admins, err := countAdminsTx(ctx, tx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return storage.ErrLastAdmin
			}
		}

		query := `
			UPDATE users
			SET username = ?, display_name = ?, password_hash = ?, role = ?,
				birthday_month = ?, birthday_day = ?, payment_handle = ?, onboarded_at = ?
			WHERE id = ?
		`

		passwordHash, paymentHandle, month, day, onboardedAt := userArgs(user)

		_, err = tx.ExecContext(ctx, query,
			user.Username,
			user.DisplayName,
			passwordHash,
			user.Role,
			month,
			day,
			paymentHandle,
			onboardedAt,
			user.ID,
		)
		if err != nil {
			if isUsernameConflict(err) {
				return storage.ErrUserAlreadyExists
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		return nil
	})
}

// DeleteUser deletes user by ID.
// Сессии, setup tokens и посты пользователя удаляются каскадом (FK).
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var role models.Role
		err := tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, userID).Scan(&role)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get user role: %w", err)
		}

		if role == models.RoleAdmin {
			admins, err := countAdminsTx(ctx, tx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return storage.ErrLastAdmin
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		return nil
	})
}

// SetPasswordHash stores a new password hash for the user
func (s *Storage) SetPasswordHash(ctx context.Context, userID, hash string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, hash, userID)
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

	return nil
}

// ResetPasswordHash stores a new password hash and revokes the user's
// sessions and setup tokens in one transaction
func (s *Storage) ResetPasswordHash(ctx context.Context, userID, hash string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
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

		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM setup_tokens WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to delete setup tokens: %w", err)
		}

		return nil
	})
}

// CountAdmins returns the number of admin accounts
func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleAdmin).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func countAdminsTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleAdmin).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
