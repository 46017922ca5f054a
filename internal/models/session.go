package models

import "time"

// Session представляет серверную сессию пользователя.
// ID - непрозрачный токен из cookie, CSRFToken клиент обязан
// возвращать в заголовке на всех изменяющих запросах.
type Session struct {
	ID        string    `json:"id"`         // непрозрачный токен (32 случайных байта, base64)
	UserID    string    `json:"user_id"`    // ID пользователя
	CSRFToken string    `json:"csrf_token"` // независимый случайный токен для CSRF-защиты
	ExpiresAt time.Time `json:"expires_at"` // абсолютное время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
}

// Expired проверяет, истекла ли сессия на момент now
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SetupToken представляет одноразовый токен установки пароля.
// Выдается при логине пользователя без пароля, живет недолго
// и удаляется при успешной установке пароля или по истечении.
type SetupToken struct {
	ID        string    `json:"id"`         // непрозрачный токен
	UserID    string    `json:"user_id"`    // ID пользователя
	ExpiresAt time.Time `json:"expires_at"` // время истечения (короткий TTL)
	CreatedAt time.Time `json:"created_at"` // время создания
}

// Expired проверяет, истек ли токен на момент now
func (t *SetupToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
