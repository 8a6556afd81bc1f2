package middleware

import (
	"net/http"
	"sync"
	"time"

	"repairtrack/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const purgeInterval = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. Idle buckets are purged
// on access once per purgeInterval.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastPurge time.Time
	now       func() time.Time
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) >= purgeInterval {
		l.purge(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// must be called under lock
func (l *ipRateLimiter) purge(now time.Time) {
	purged := 0
	for ip, v := range l.visitors {
		// a bucket idle this long has refilled completely
		if now.Sub(v.lastSeen) >= purgeInterval {
			delete(l.visitors, ip)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(l.visitors)).
			Msg("rate limiter purged")
	}
}

// RateLimiter allows perMinute requests per client IP with bursts of the same
// size. perMinute <= 0 disables limiting.
func RateLimiter(perMinute int) gin.HandlerFunc {
	return rateLimit(perMinute, "Too many requests. Try again in a moment.")
}

// AuthRateLimiter is RateLimiter with its own buckets for login and registration.
func AuthRateLimiter(perMinute int) gin.HandlerFunc {
	return rateLimit(perMinute, "Too many login attempts. Try again in a minute.")
}

func rateLimit(perMinute int, msg string) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newIPRateLimiter(perMinute)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
