package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	// Самоописывающий формат с параметрами
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	// Одинаковые пароли дают разные хеши из-за случайной соли
	hash1, err := HashPassword("same password here")
	require.NoError(t, err)

	hash2, err := HashPassword("same password here")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPassword(t *testing.T) {
	password := "my secure passphrase"

	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{
			name:     "correct password",
			password: password,
			want:     true,
		},
		{
			name:     "wrong password",
			password: "not the password",
			want:     false,
		},
		{
			name:     "empty password",
			password: "",
			want:     false,
		},
		{
			name:     "case matters",
			password: "My secure passphrase",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword(tt.password, hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{
			name:    "empty hash",
			encoded: "",
		},
		{
			name:    "not an argon2id hash",
			encoded: "$bcrypt$whatever",
		},
		{
			name:    "wrong part count",
			encoded: "$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		},
		{
			name:    "garbage base64 salt",
			encoded: "$argon2id$v=19$m=65536,t=1,p=4$!!!$AAAA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPassword("any password at all", tt.encoded)
			assert.Error(t, err)
		})
	}
}
