package middleware

import (
	"agv-finance/internal/config"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}
	rl := NewRateLimiterMiddleware(ctx, cfg, logger)
	handler := rl.Middleware(okHandler())

	t.Run("allows requests within the burst and blocks the next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/loans", nil)
		req.RemoteAddr = "127.0.0.1:12345"

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Rate limit exceeded", body["error"]["message"])
	})

	t.Run("other clients keep their own bucket", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/loans", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("extractIP handles proxy headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
		assert.Equal(t, "192.168.1.1", rl.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		assert.Equal(t, "10.0.0.1", rl.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		assert.Equal(t, "127.0.0.1", rl.extractIP(req))
	})

	t.Run("removeIdle keeps drained buckets", func(t *testing.T) {
		rl.removeIdle()
		_, ok := rl.limiters.Load("127.0.0.1")
		assert.True(t, ok)
	})
}

func TestRateLimiterMiddleware_Disabled(t *testing.T) {
	rl := NewRateLimiterMiddleware(context.Background(), config.RateLimitConfig{Enabled: false}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
