package middleware

import (
	"bytes"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/config"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) *RateLimiterMiddleware {
	t.Helper()
	rl := NewRateLimiterMiddleware(cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	t.Cleanup(rl.Stop)
	return rl
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterMiddleware(t *testing.T) {
	t.Run("allows requests up to the burst then blocks", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2})
		handler := rl.Middleware(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var response dto.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Rate limit exceeded", response.Error.Message)
		assert.Equal(t, "RATE_LIMITED", response.Error.Code)
	})

	t.Run("limits each client separately", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})
		handler := rl.Middleware(okHandler())

		first := httptest.NewRequest(http.MethodGet, "/", nil)
		first.RemoteAddr = "10.0.0.1:1000"
		second := httptest.NewRequest(http.MethodGet, "/", nil)
		second.RemoteAddr = "10.0.0.2:1000"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("disabled limiter passes everything through", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: false, RPS: 0.001, Burst: 1})
		handler := rl.Middleware(okHandler())

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestExtractIP(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
	assert.Equal(t, "192.168.1.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	req.Header.Set("X-Real-IP", "10.0.0.1")
	assert.Equal(t, "10.0.0.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	assert.Equal(t, "127.0.0.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", rl.extractIP(req))
}

func TestEvictIdleLimiters(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.getLimiter("10.0.0.1")
	clock = clock.Add(2 * time.Minute)
	rl.getLimiter("10.0.0.2")
	clock = clock.Add(2 * time.Minute)

	assert.Equal(t, 1, rl.evictIdle())
	_, stale := rl.limiters["10.0.0.1"]
	_, fresh := rl.limiters["10.0.0.2"]
	assert.False(t, stale)
	assert.True(t, fresh)
}
