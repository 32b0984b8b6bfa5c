package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newRateLimitRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(Identity(), RateLimit(r, b))
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func hit(r *gin.Engine, ip, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsFirst(t *testing.T) {
	r := newRateLimitRouter(100, 5)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1", "").Code)
}

func TestRateLimit_Burst(t *testing.T) {
	r := newRateLimitRouter(0.001, 3) // near-zero refill so we exhaust quickly
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.1.1", "").Code, "request %d should be allowed", i+1)
	}
	w := hit(r, "10.0.1.1", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_PerIP(t *testing.T) {
	r := newRateLimitRouter(0.001, 1)
	for _, ip := range []string{"10.1.1.1", "10.1.1.2"} {
		assert.Equal(t, http.StatusOK, hit(r, ip, "").Code, "first request from %s should be OK", ip)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.1", "").Code)
}

func TestRateLimit_PerUser(t *testing.T) {
	r := newRateLimitRouter(0.001, 1)
	assert.Equal(t, http.StatusOK, hit(r, "10.2.2.2", "alice").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.2.2.2", "bob").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.3.3.3", "alice").Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	ok, _ := rl.allow("ip:1", now.Add(-time.Hour))
	assert.True(t, ok)
	ok, _ = rl.allow("ip:2", now)
	assert.True(t, ok)

	assert.Equal(t, 1, rl.cleanup(now))
	assert.Len(t, rl.clients, 1)
}
