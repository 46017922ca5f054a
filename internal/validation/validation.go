package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы (a-z, A-Z), цифры (0-9), точка (.) и нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._]{3,32}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 12
	// MaxDisplayNameLen максимальная длина отображаемого имени
	MaxDisplayNameLen = 64
	// MaxPaymentHandleLen максимальная длина платежного реквизита
	MaxPaymentHandleLen = 128
	// MaxTitleLen максимальная длина заголовка поста
	MaxTitleLen = 200
	// MaxBodyLen максимальная длина текста поста
	MaxBodyLen = 4000
)

// NormalizeUsername приводит username к каноническому виду.
// Usernames регистронезависимы: сравнение и хранение всегда в lower case.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername проверяет, что username соответствует требованиям
// Формат: латинские буквы, цифры, точка и нижнее подчеркивание
// Длина: 3-32 символа
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), dots (.) and underscores (_)")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
// Минимум 12 символов; проверяется до хеширования
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateBirthday проверяет пару месяц/день.
// Год не хранится, поэтому 29 февраля считается допустимой датой.
func ValidateBirthday(month time.Month, day int) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("birthday month must be between 1 and 12")
	}

	if day < 1 || day > daysInMonth(month) {
		return fmt.Errorf("birthday day %d is out of range for month %d", day, month)
	}

	return nil
}

// daysInMonth возвращает максимальное число дней в месяце
// (для февраля - 29, год рождения неизвестен)
func daysInMonth(month time.Month) int {
	switch month {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// ValidateDisplayName проверяет отображаемое имя
func ValidateDisplayName(name string) error {
	if len(name) > MaxDisplayNameLen {
		return fmt.Errorf("display name must not exceed %d characters", MaxDisplayNameLen)
	}
	return nil
}

// ValidatePaymentHandle проверяет платежный реквизит
func ValidatePaymentHandle(handle string) error {
	if len(handle) > MaxPaymentHandleLen {
		return fmt.Errorf("payment handle must not exceed %d characters", MaxPaymentHandleLen)
	}
	return nil
}
