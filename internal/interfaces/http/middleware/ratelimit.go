package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// staleAfter bounds how long an idle bucket survives before the sweeper
// drops it.
const staleAfter = 10 * time.Minute

// KeyFunc derives the rate-limit key from a request.
type KeyFunc func(c *gin.Context) string

// RateLimiter is a token-bucket limiter with per-key buckets. Buckets fill
// at rps tokens per second up to burst; a request spends one token.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	rate    float64
	burst   float64
	keyFor  KeyFunc
	message string
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter keyed by client IP.
func NewRateLimiter(rps, burst int) *RateLimiter {
	return newRateLimiter(rps, burst, func(c *gin.Context) string {
		return c.ClientIP()
	}, "rate limit exceeded")
}

// NewTriggerRateLimiter creates the stricter limiter for the sync trigger
// endpoints, keyed by client IP and path so a logout storm cannot starve
// logins.
func NewTriggerRateLimiter() *RateLimiter {
	return newRateLimiter(10, 20, func(c *gin.Context) string {
		return c.ClientIP() + ":" + c.Request.URL.Path
	}, "too many synchronization attempts")
}

func newRateLimiter(rps, burst int, keyFor KeyFunc, message string) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(rps),
		burst:   float64(burst),
		keyFor:  keyFor,
		message: message,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request under key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &bucket{tokens: rl.burst - 1, lastSeen: now}
		return true
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(staleAfter)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.lastSeen) > staleAfter {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns the Gin middleware enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(rl.keyFor(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "too_many_requests",
				"error_description": rl.message,
			})
			return
		}
		c.Next()
	}
}
