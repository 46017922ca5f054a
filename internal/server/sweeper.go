package server

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredDeleter покрывает методы хранилища для фоновой чистки
type ExpiredDeleter interface {
	DeleteExpiredSessions(ctx context.Context) (int, error)
	DeleteExpiredSetupTokens(ctx context.Context) (int, error)
}

// Sweeper периодически удаляет истекшие сессии и setup tokens.
// Это только гигиена: авторитетная проверка истечения происходит
// при каждом lookup, корректность от sweeper не зависит.
type Sweeper struct {
	logger   *slog.Logger
	store    ExpiredDeleter
	interval time.Duration
}

// NewSweeper создает новый sweeper
func NewSweeper(logger *slog.Logger, store ExpiredDeleter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		logger:   logger,
		store:    store,
		interval: interval,
	}
}

// Run крутит цикл чистки до отмены контекста
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sessions, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Warn("failed to sweep expired sessions", slog.Any("error", err))
	}

	tokens, err := s.store.DeleteExpiredSetupTokens(ctx)
	if err != nil {
		s.logger.Warn("failed to sweep expired setup tokens", slog.Any("error", err))
	}

	if sessions > 0 || tokens > 0 {
		s.logger.Info("expired rows swept",
			slog.Int("sessions", sessions),
			slog.Int("setup_tokens", tokens))
	}
}
