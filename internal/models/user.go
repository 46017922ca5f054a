package models

import "time"

// Role определяет роль пользователя в системе
type Role string

const (
	// RoleUser обычный член семьи
	RoleUser Role = "user"
	// RoleAdmin администратор (управляет аккаунтами)
	RoleAdmin Role = "admin"
)

// Valid проверяет, что роль известна системе
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User представляет пользователя в системе.
// PasswordHash == nil означает состояние "пароль не установлен":
// при логине такому пользователю выдается setup token вместо сессии.
// Отдельного флага must_set_password нет, состояние выводится из hash.
type User struct {
	ID            string     `json:"id"`             // UUID пользователя
	Username      string     `json:"username"`       // уникальный username (хранится в lower case)
	DisplayName   string     `json:"display_name"`   // отображаемое имя (опционально)
	PasswordHash  *string    `json:"-"`              // argon2id хеш пароля, nil = пароль не установлен
	Role          Role       `json:"role"`           // user или admin
	Birthday      *Birthday  `json:"birthday"`       // день рождения (месяц/день, год не хранится)
	PaymentHandle *string    `json:"payment_handle"` // реквизит для переводов (опционально)
	OnboardedAt   *time.Time `json:"last_login_at"`  // nil = onboarding не завершен; после первой отметки не обновляется
	CreatedAt     time.Time  `json:"created_at"`     // время создания
}

// NeedsPassword сообщает, что у пользователя еще нет пароля
func (u *User) NeedsPassword() bool {
	return u.PasswordHash == nil
}

// NeedsSetup вычисляет, обязан ли пользователь пройти onboarding.
// Значение никогда не персистится, выводится заново при каждом чтении.
// Админы освобождены от onboarding полностью.
func (u *User) NeedsSetup() bool {
	if u.Role == RoleAdmin {
		return false
	}
	if u.OnboardedAt != nil {
		return false
	}
	return u.Birthday == nil || u.PaymentHandle == nil
}

// Birthday хранит повторяющуюся дату (месяц и день), год игнорируется
type Birthday struct {
	Month time.Month `json:"month"` // 1-12
	Day   int        `json:"day"`   // 1-31
}
