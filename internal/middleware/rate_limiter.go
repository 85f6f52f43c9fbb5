package middleware

import (
	"net/http"
	"sync"
	"time"

	"stockroom/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// ipEntry tracks request counts per IP within a fixed window.
type ipEntry struct {
	count     int
	windowEnd time.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipEntry
	max     int
	window  time.Duration
}

func newIPLimiter(max int, window time.Duration) *ipLimiter {
	l := &ipLimiter{entries: make(map[string]*ipEntry), max: max, window: window}
	go l.purgeLoop()
	return l
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		l.entries[ip] = &ipEntry{count: 1, windowEnd: now.Add(l.window)}
		return true
	}
	entry.count++
	return entry.count <= l.max
}

// purgeLoop periodically drops expired entries so the map does not grow
// without bound from IPs that never return.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for range ticker.C {
		l.purgeExpired(time.Now())
	}
}

func (l *ipLimiter) purgeExpired(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for ip, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().
			Int("purged", purged).
			Int("remaining", len(l.entries)).
			Msg("rate limiter entries purged")
	}
	return purged
}

// RateLimiter limits requests per IP within the given window.
func RateLimiter(max int, window time.Duration) gin.HandlerFunc {
	limiter := newIPLimiter(max, window)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests"))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP to slow
// down credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(20, time.Minute)
}
