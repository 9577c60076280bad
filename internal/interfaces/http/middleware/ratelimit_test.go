package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("admits up to the limit per window", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)

		for i := range 3 {
			assert.Truef(t, rl.Allow("10.0.0.1"), "request %d should pass", i+1)
		}
		assert.False(t, rl.Allow("10.0.0.1"), "fourth request exceeds the limit")
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.2"))
	})

	t.Run("a fresh window resets the budget", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
		time.Sleep(15 * time.Millisecond)
		assert.True(t, rl.Allow("10.0.0.1"))
	})
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, rl.Remaining("10.0.0.1"), "unseen key has the full budget")
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	assert.Equal(t, 3, rl.Remaining("10.0.0.1"))
}

func TestRateLimit(t *testing.T) {
	limited := func(limit int) *gin.Engine {
		engine := gin.New()
		engine.Use(RateLimit(NewRateLimiter(limit, time.Minute)))
		engine.GET("/api/v1/billing/orders", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return engine
	}

	hit := func(engine *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/billing/orders", nil))
		return w
	}

	t.Run("allows and annotates requests under the limit", func(t *testing.T) {
		engine := limited(2)

		w := hit(engine)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejects the request over the limit with 429", func(t *testing.T) {
		engine := limited(2)
		hit(engine)
		hit(engine)

		w := hit(engine)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})
}

func TestRateLimitByKey(t *testing.T) {
	engine := gin.New()
	limiter := NewRateLimiter(1, time.Minute)
	engine.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Api-Key")
	}))
	engine.GET("/api/v1/reports/dashboard", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard", nil)
		req.Header.Set("X-Api-Key", key)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("tenant-a"))
	assert.Equal(t, http.StatusTooManyRequests, hit("tenant-a"))
	assert.Equal(t, http.StatusOK, hit("tenant-b"), "other keys keep their own budget")
}
