package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, setupTestLogger())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d should be allowed", i+1)
	}

	// Бакет исчерпан
	assert.False(t, rl.Allow("1.2.3.4"))

	// Другой ключ не затронут
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond, setupTestLogger())
	defer rl.Stop()

	assert.True(t, rl.Allow("key"))
	assert.False(t, rl.Allow("key"))

	// После окна токены пополняются
	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("key"))
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(2, time.Minute, setupTestLogger())(okHandler())

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = ip
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("1.2.3.4:1111").Code)
	assert.Equal(t, http.StatusOK, do("1.2.3.4:1111").Code)

	w := do("1.2.3.4:1111")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		realIP   string
		remote   string
		expected string
	}{
		{
			name:     "remote addr only",
			remote:   "10.0.0.1:5000",
			expected: "10.0.0.1:5000",
		},
		{
			name:     "x-forwarded-for wins",
			xff:      "203.0.113.7, 10.0.0.2",
			remote:   "10.0.0.1:5000",
			expected: "203.0.113.7",
		},
		{
			name:     "x-real-ip fallback",
			realIP:   "203.0.113.9",
			remote:   "10.0.0.1:5000",
			expected: "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
