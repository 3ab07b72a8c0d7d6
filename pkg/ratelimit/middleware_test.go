package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(cfg RateLimitConfig, key KeyFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(cfg, key))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r *gin.Engine, tenant string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant", tenant)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_Burst(t *testing.T) {
	r := newRouter(RateLimitConfig{RPS: 0.001, Burst: 2}, nil)

	assert.Equal(t, http.StatusNoContent, hit(r, ""))
	assert.Equal(t, http.StatusNoContent, hit(r, ""))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, ""))
}

func TestRateLimitMiddleware_SeparateBuckets(t *testing.T) {
	key := func(c *gin.Context) string { return c.GetHeader("X-Tenant") }
	r := newRouter(RateLimitConfig{RPS: 0.001, Burst: 1}, key)

	assert.Equal(t, http.StatusNoContent, hit(r, "ws_1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "ws_1"))
	assert.Equal(t, http.StatusNoContent, hit(r, "ws_2"))
}

func TestStore_EvictIdle(t *testing.T) {
	s := newStore(RateLimitConfig{RPS: 1, Burst: 1, MaxAge: time.Minute})
	s.get("a")
	s.get("b")

	s.evictIdle(time.Now())
	assert.Equal(t, 2, s.size())

	s.evictIdle(time.Now().Add(2 * time.Minute))
	assert.Zero(t, s.size())
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "10", formatRate(10))
	assert.Equal(t, "0.5", formatRate(0.5))
}
