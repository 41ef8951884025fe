package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client address and action.
type rateLimiter struct {
	mu       sync.Mutex
	perMin   int
	visitors map[string]*visitor
	now      func() time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		perMin:   perMinute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *rateLimiter) Allow(key string) bool {
	if l == nil || l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		burst := l.perMin / 6
		if burst < 1 {
			burst = 1
		}
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(l.perMin)/60), burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.sweepLocked(now)
	return v.limiter.AllowN(now, 1)
}

func (l *rateLimiter) sweepLocked(now time.Time) {
	if len(l.visitors) < 1024 {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, key)
		}
	}
}

func (s *Server) enforceRateLimit(c *gin.Context, action string) bool {
	if s.limiter.Allow(action + "|" + c.ClientIP()) {
		return true
	}
	log.Info().Str("action", action).Str("ip", c.ClientIP()).Msg("rate limited")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
	return false
}
