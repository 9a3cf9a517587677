package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitsuz/habits-backend/internal/database"
)

func setupRateLimitRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	prev := database.RedisClient
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.RedisClient = prev })

	return mr
}

func doRateLimitedRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.RemoteAddr = ip + ":54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows requests under the limit", func(t *testing.T) {
		setupRateLimitRedis(t)
		handler := RateLimitMiddleware(okHandler)

		rec := doRateLimitedRequest(handler, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "120", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "119", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("blocks after exceeding the limit", func(t *testing.T) {
		mr := setupRateLimitRedis(t)
		handler := RateLimitMiddleware(okHandler)

		var rec *httptest.ResponseRecorder
		for i := 0; i <= RateLimitMaxRequests; i++ {
			rec = doRateLimitedRequest(handler, "10.0.0.2")
		}

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.True(t, mr.Exists(BlockedIPKeyPrefix+"10.0.0.2"))

		// Follow-up requests hit the block list directly.
		rec = doRateLimitedRequest(handler, "10.0.0.2")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "temporarily blocked")
	})

	t.Run("counts IPs independently", func(t *testing.T) {
		setupRateLimitRedis(t)
		handler := RateLimitMiddleware(okHandler)

		for i := 0; i <= RateLimitMaxRequests; i++ {
			doRateLimitedRequest(handler, "10.0.0.3")
		}

		rec := doRateLimitedRequest(handler, "10.0.0.4")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("block expires", func(t *testing.T) {
		mr := setupRateLimitRedis(t)
		handler := RateLimitMiddleware(okHandler)

		for i := 0; i <= RateLimitMaxRequests; i++ {
			doRateLimitedRequest(handler, "10.0.0.5")
		}
		require.True(t, mr.Exists(BlockedIPKeyPrefix+"10.0.0.5"))

		mr.FastForward(BlockedIPDuration + RateLimitWindow)

		rec := doRateLimitedRequest(handler, "10.0.0.5")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("fails open without redis", func(t *testing.T) {
		prev := database.RedisClient
		database.RedisClient = nil
		t.Cleanup(func() { database.RedisClient = prev })

		handler := RateLimitMiddleware(okHandler)
		rec := doRateLimitedRequest(handler, "10.0.0.6")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
