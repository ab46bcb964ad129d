package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doPost(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 3)
	defer rl.Stop()
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doPost(r, "10.0.0.1:1234"))
	}
}

func TestRateLimiter_BlocksBeyondBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 2)
	defer rl.Stop()
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, doPost(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, doPost(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "10.0.0.1:1234"))
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 1)
	defer rl.Stop()
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, doPost(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, doPost(r, "10.0.0.2:1234"))
}
