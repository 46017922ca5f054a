package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// TokenSize - размер токена в байтах (256 бит энтропии)
const TokenSize = 32

// GenerateToken создает непрозрачный токен из криптографически
// случайных байтов. Используется для session id, CSRF token и
// setup token - каждый генерируется независимо.
func GenerateToken() (string, error) {
	tokenBytes := make([]byte, TokenSize)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// ConstantTimeEquals сравнивает два токена за константное время
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
