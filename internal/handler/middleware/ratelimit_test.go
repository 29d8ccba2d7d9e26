//go:build unit

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courier-escrow/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2})
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refilled")
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	require.Len(t, l.clients, 2)

	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("10.0.0.3")
	assert.Len(t, l.clients, 1)
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(r *gin.Engine) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.10:51000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("rejects with 429 once the bucket is empty", func(t *testing.T) {
		l := NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 1})
		r := gin.New()
		r.GET("/ping", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

		assert.Equal(t, http.StatusNoContent, serve(r).Code)

		rec := serve(r)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), `"code":"RateLimited"`)
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		l := NewRateLimiter(config.RateLimitConfig{RPS: 0, Burst: 0})
		r := gin.New()
		r.GET("/ping", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusNoContent, serve(r).Code)
		}
	})
}
