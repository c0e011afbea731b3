package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurstPerClient(t *testing.T) {
	l := New(3, 15*time.Minute, 10)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients keep their own bucket")
}

func TestMiddlewareResponds429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(1, time.Minute, 10).Middleware())
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, second.Body.String())
}

func TestEvictionBoundsTrackedClients(t *testing.T) {
	l := New(1, time.Minute, 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.True(t, l.Allow("c"))

	assert.LessOrEqual(t, l.buckets.Len(), 2)
	assert.True(t, l.Allow("a"), "evicted client starts with a fresh bucket")
}
