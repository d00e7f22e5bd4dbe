package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"safetravels-api/utils"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. A bucket holds max
// tokens and refills completely over window.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	rate        rate.Limit
	burst       int
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		rate:        rate.Every(window / time.Duration(max)),
		burst:       max,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether key may make another request and how many
// requests it has left.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > rl.window {
		rl.cleanup(now)
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// cleanup drops visitors idle for a whole window; their bucket is full again
// by then so forgetting them changes nothing.
func (rl *RateLimiter) cleanup(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.window {
			delete(rl.visitors, key)
		}
	}
	rl.lastCleanup = now
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// RateLimit limits each client IP to max requests per window.
func RateLimit(window time.Duration, max int) gin.HandlerFunc {
	return rateLimit(NewRateLimiter(window, max))
}

func rateLimit(rl *RateLimiter) gin.HandlerFunc {
	limit := strconv.Itoa(rl.burst)

	return func(c *gin.Context) {
		allowed, remaining := rl.Allow(c.ClientIP())

		c.Header("RateLimit-Limit", limit)
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/float64(rl.rate)))))
			utils.SendError(c, http.StatusTooManyRequests, rateLimitMessage, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
