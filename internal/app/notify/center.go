package notify

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Center keeps pending notifications per browser session until the next page
// render drains them. Notifications older than the TTL are never shown.
type Center struct {
	mu     sync.Mutex
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewCenter(ttl time.Duration, logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Push queues n for the session.
func (c *Center) Push(sessionID string, n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now()
	}
	record(n)

	c.mu.Lock()
	defer c.mu.Unlock()

	var pending []Notification
	if v, ok := c.cache.Get(sessionID); ok {
		pending = v.([]Notification)
	}
	pending = append(pending, n)
	c.cache.Set(sessionID, pending, c.ttl)

	c.logger.Debug("Notification queued",
		zap.String("session_id", sessionID),
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message))
}

// Drain returns and forgets the live notifications of the session, oldest first.
func (c *Center) Drain(sessionID string) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(sessionID)
	if !ok {
		return nil
	}
	c.cache.Delete(sessionID)

	cutoff := c.now().Add(-c.ttl)
	var live []Notification
	for _, n := range v.([]Notification) {
		if n.CreatedAt.After(cutoff) {
			live = append(live, n)
		}
	}
	return live
}

// For returns a Notifier bound to one session.
func (c *Center) For(sessionID string) Notifier {
	return NotifierFunc(func(_ context.Context, n Notification) {
		c.Push(sessionID, n)
	})
}
