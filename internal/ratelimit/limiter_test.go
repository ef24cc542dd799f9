package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow(t *testing.T) {
	t.Run("WithinLimit_Allowed", func(t *testing.T) {
		// Given: a limiter with 3 requests per minute
		limiter := New(3, 100)

		// Then: the first three requests pass, the fourth does not
		for i := 0; i < 3; i++ {
			require.True(t, limiter.Allow("1.2.3.4"))
		}
		assert.False(t, limiter.Allow("1.2.3.4"))
	})

	t.Run("ClientsAreIndependent", func(t *testing.T) {
		limiter := New(1, 100)

		require.True(t, limiter.Allow("1.2.3.4"))
		require.False(t, limiter.Allow("1.2.3.4"))

		// Then: a different client still has its own budget
		assert.True(t, limiter.Allow("5.6.7.8"))
	})

	t.Run("MinuteWindow_Resets", func(t *testing.T) {
		limiter := New(1, 100)

		current := time.Now()
		limiter.now = func() time.Time { return current }

		require.True(t, limiter.Allow("1.2.3.4"))
		require.False(t, limiter.Allow("1.2.3.4"))

		// When: the minute elapses
		current = current.Add(time.Minute)

		// Then: the budget is back
		assert.True(t, limiter.Allow("1.2.3.4"))
	})

	t.Run("HourWindow_Caps", func(t *testing.T) {
		// Given: a generous minute budget but 2 requests per hour
		limiter := New(100, 2)

		current := time.Now()
		limiter.now = func() time.Time { return current }

		require.True(t, limiter.Allow("1.2.3.4"))

		// When: a minute passes between requests
		current = current.Add(time.Minute)
		require.True(t, limiter.Allow("1.2.3.4"))

		current = current.Add(time.Minute)

		// Then: the hour window still blocks the third request
		assert.False(t, limiter.Allow("1.2.3.4"))
	})

	t.Run("RejectedRequest_NotCounted", func(t *testing.T) {
		limiter := New(1, 1)

		current := time.Now()
		limiter.now = func() time.Time { return current }

		require.True(t, limiter.Allow("1.2.3.4"))
		require.False(t, limiter.Allow("1.2.3.4"))

		// When: the hour elapses
		current = current.Add(time.Hour)

		// Then: only the accepted request counted against the hour budget
		assert.True(t, limiter.Allow("1.2.3.4"))
	})
}

func TestLimiter_Middleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("OverLimit_Returns429", func(t *testing.T) {
		limiter := New(1, 100)
		handler := limiter.Middleware(next)

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/games", nil))
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/games", nil))

		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.JSONEq(t, `{"error":"rate limit exceeded"}`, second.Body.String())
	})

	t.Run("HealthAndMetrics_Exempt", func(t *testing.T) {
		limiter := New(0, 0)
		handler := limiter.Middleware(next)

		for _, path := range []string{"/health", "/metrics"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		}
	})
}
