// Package ratelimit throttles API clients by IP address.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per client key. A bucket refills at
// max/window and holds at most max tokens. Buckets idle for a full window are
// evicted, which is equivalent to a full refill.
type Limiter struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// New constructs a Limiter allowing max requests per window per client,
// tracking at most clients keys at once.
func New(max int, window time.Duration, clients int) *Limiter {
	if max < 1 {
		max = 1
	}
	if clients < 1 {
		clients = 1
	}
	return &Limiter{
		buckets: expirable.NewLRU[string, *rate.Limiter](clients, nil, window),
		limit:   rate.Limit(float64(max) / window.Seconds()),
		burst:   max,
	}
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-adding refreshes the entry's TTL so active clients are not evicted.
	l.buckets.Add(key, bucket)
	l.mu.Unlock()

	return bucket.Allow()
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
