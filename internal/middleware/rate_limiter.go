package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/CuasDev/fel/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	loginLimit    = 20
	purgeInterval = 5 * time.Minute
)

// windowEntry tracks requests per IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// windowLimiter counts requests per key in fixed windows. Expired keys are
// purged lazily, at most once per purgeInterval.
type windowLimiter struct {
	limit     int
	window    time.Duration
	mu        sync.Mutex
	entries   map[string]*windowEntry
	nextPurge time.Time
	now       func() time.Time
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// allow records one request for key and reports whether it is within the limit,
// together with the end of the current window.
func (l *windowLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		l.purge(now)
		l.nextPurge = now.Add(purgeInterval)
	}

	entry, ok := l.entries[key]
	if !ok || now.After(entry.windowEnd) {
		entry = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = entry
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

func (l *windowLimiter) purge(now time.Time) {
	purged := 0
	for key, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, key)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(l.entries)).
			Msg("rate limiter purged")
	}
}

func (l *windowLimiter) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login and registration attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newWindowLimiter(loginLimit, time.Minute).
		middleware("Demasiados intentos. Intente en 1 minuto.")
}

// RateLimiter returns a general-purpose per-IP limiter. A non-positive limit disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return newWindowLimiter(limit, window).
		middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
