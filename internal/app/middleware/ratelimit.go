package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// RateLimiter allows at most maxRequests per client within a sliding window.
// Clients are keyed by IP address and forgotten after two idle windows.
type RateLimiter struct {
	clients     *cache.Cache
	logger      *zap.Logger
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

type clientLimit struct {
	mu       sync.Mutex
	requests []time.Time
}

func NewRateLimiter(logger *zap.Logger, maxRequests int, window time.Duration) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		clients:     cache.New(window*2, window*2),
		logger:      logger,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (rl *RateLimiter) client(id string) *clientLimit {
	if v, ok := rl.clients.Get(id); ok {
		rl.clients.SetDefault(id, v)
		return v.(*clientLimit)
	}
	limit := &clientLimit{}
	if err := rl.clients.Add(id, limit, cache.DefaultExpiration); err != nil {
		// Lost a race with another request of the same client.
		if v, ok := rl.clients.Get(id); ok {
			return v.(*clientLimit)
		}
	}
	return limit
}

// Allow records a request of clientID and reports whether it is within the limit.
func (rl *RateLimiter) Allow(clientID string) bool {
	client := rl.client(clientID)

	client.mu.Lock()
	defer client.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	valid := client.requests[:0]
	for _, t := range client.requests {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	client.requests = valid

	if len(client.requests) >= rl.maxRequests {
		rl.logger.Warn("Rate limit exceeded",
			zap.String("client_id", clientID),
			zap.Int("requests", len(client.requests)),
			zap.Int("max_requests", rl.maxRequests),
			zap.Duration("window", rl.window))
		return false
	}

	client.requests = append(client.requests, now)
	return true
}

// RateLimitMiddleware answers 429 once the client has used up its requests.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.String(http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
