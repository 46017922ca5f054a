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

// dateLayout - формат хранения дат постов (лексикографически сортируем)
const dateLayout = "2006-01-02"

// CreateUpdate stores a new update post
func (s *Storage) CreateUpdate(ctx context.Context, update *models.Update) error {
	query := `
		INSERT INTO updates (id, author_id, date, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		update.ID,
		update.AuthorID,
		update.Date.Format(dateLayout),
		update.Title,
		update.Body,
		update.CreatedAt,
		update.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert update: %w", err)
	}

	return nil
}

// scanUpdate читает одну строку updates с разбором даты
func scanUpdate(row scanner) (*models.Update, error) {
	update := &models.Update{}
	var date string

	err := row.Scan(
		&update.ID,
		&update.AuthorID,
		&date,
		&update.Title,
		&update.Body,
		&update.CreatedAt,
		&update.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	update.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse update date: %w", err)
	}

	return update, nil
}

// GetUpdateByID retrieves an update post by ID
func (s *Storage) GetUpdateByID(ctx context.Context, updateID string) (*models.Update, error) {
	query := `
		SELECT id, author_id, date, title, body, created_at, updated_at
		FROM updates
		WHERE id = ?
	`

	update, err := scanUpdate(s.db.QueryRowContext(ctx, query, updateID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUpdateNotFound
		}
		return nil, fmt.Errorf("failed to get update: %w", err)
	}

	return update, nil
}

// ListUpdatesBetween retrieves posts with date in [from, to], ordered by date
func (s *Storage) ListUpdatesBetween(ctx context.Context, from, to time.Time) ([]*models.Update, error) {
	query := `
		SELECT id, author_id, date, title, body, created_at, updated_at
		FROM updates
		WHERE date >= ? AND date <= ?
		ORDER BY date, created_at
	`

	rows, err := s.db.QueryContext(ctx, query, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query updates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var updates []*models.Update

	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan update: %w", err)
		}
		updates = append(updates, update)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return updates, nil
}

// EditUpdate updates title, body and date of an existing post
func (s *Storage) EditUpdate(ctx context.Context, update *models.Update) error {
	query := `
		UPDATE updates
		SET date = ?, title = ?, body = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		update.Date.Format(dateLayout),
		update.Title,
		update.Body,
		update.UpdatedAt,
		update.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUpdateNotFound
	}

	return nil
}

// DeleteUpdate deletes an update post by ID
func (s *Storage) DeleteUpdate(ctx context.Context, updateID string) error {
	query := `DELETE FROM updates WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, updateID)
	if err != nil {
		return fmt.Errorf("failed to delete update: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUpdateNotFound
	}

	return nil
}
