package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already normalized",
			input:    "alice",
			expected: "alice",
		},
		{
			name:     "uppercase is lowered",
			input:    "Jane.Doe",
			expected: "jane.doe",
		},
		{
			name:     "surrounding whitespace is trimmed",
			input:    "  bob  ",
			expected: "bob",
		},
		{
			name:     "mixed case with underscore",
			input:    "Alice_Smith",
			expected: "alice_smith",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUsername(tt.input))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{
			name:     "valid username - lowercase",
			username: "alice",
			wantErr:  false,
		},
		{
			name:     "valid username - with dot",
			username: "jane.doe",
			wantErr:  false,
		},
		{
			name:     "valid username - with underscore",
			username: "jane_doe",
			wantErr:  false,
		},
		{
			name:     "valid username - min length",
			username: "abc",
			wantErr:  false,
		},
		{
			name:     "valid username - max length",
			username: "a1234567890123456789012345678901", // 32 символа
			wantErr:  false,
		},
		{
			name:     "invalid - empty",
			username: "",
			wantErr:  true,
		},
		{
			name:     "invalid - too short",
			username: "ab",
			wantErr:  true,
		},
		{
			name:     "invalid - too long",
			username: "a12345678901234567890123456789012", // 33 символа
			wantErr:  true,
		},
		{
			name:     "invalid - with space",
			username: "jane doe",
			wantErr:  true,
		},
		{
			name:     "invalid - with dash",
			username: "jane-doe",
			wantErr:  true,
		},
		{
			name:     "invalid - cyrillic",
			username: "Алиса",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid - exactly minimum length",
			password: "abcdefghijkl", // 12 символов
			wantErr:  false,
		},
		{
			name:     "valid - long passphrase",
			password: "correct horse battery staple",
			wantErr:  false,
		},
		{
			name:     "invalid - empty",
			password: "",
			wantErr:  true,
		},
		{
			name:     "invalid - one short of minimum",
			password: "abcdefghijk", // 11 символов
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBirthday(t *testing.T) {
	tests := []struct {
		name    string
		month   time.Month
		day     int
		wantErr bool
	}{
		{
			name:    "valid - mid year",
			month:   time.June,
			day:     15,
			wantErr: false,
		},
		{
			name:    "valid - december 31",
			month:   time.December,
			day:     31,
			wantErr: false,
		},
		// Год рождения неизвестен, поэтому 29 февраля допустимо
		{
			name:    "valid - february 29",
			month:   time.February,
			day:     29,
			wantErr: false,
		},
		{
			name:    "invalid - february 30",
			month:   time.February,
			day:     30,
			wantErr: true,
		},
		{
			name:    "invalid - april 31",
			month:   time.April,
			day:     31,
			wantErr: true,
		},
		{
			name:    "invalid - month zero",
			month:   0,
			day:     10,
			wantErr: true,
		},
		{
			name:    "invalid - month thirteen",
			month:   13,
			day:     10,
			wantErr: true,
		},
		{
			name:    "invalid - day zero",
			month:   time.June,
			day:     0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBirthday(tt.month, tt.day)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	require.NoError(t, ValidateDisplayName(""))
	require.NoError(t, ValidateDisplayName("Jane Doe"))

	long := make([]byte, MaxDisplayNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, ValidateDisplayName(string(long)))
}

func TestValidatePaymentHandle(t *testing.T) {
	require.NoError(t, ValidatePaymentHandle("@jane-pay"))

	long := make([]byte, MaxPaymentHandleLen+1)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, ValidatePaymentHandle(string(long)))
}
