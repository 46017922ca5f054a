package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Токен декодируется обратно в TokenSize байтов
	decoded, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, TokenSize)
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestConstantTimeEquals(t *testing.T) {
	assert.True(t, ConstantTimeEquals("token", "token"))
	assert.False(t, ConstantTimeEquals("token", "other"))
	assert.False(t, ConstantTimeEquals("token", "token2"))
	assert.False(t, ConstantTimeEquals("", "token"))
	assert.True(t, ConstantTimeEquals("", ""))
}
