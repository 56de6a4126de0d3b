package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/notewall/notewall/pkg/metrics"
)

// per-key limiter store (in-memory token buckets). Bounded: once the store
// reaches limiterMaxEntries, idle buckets are swept before a new one is
// added, so one bucket per transient IP cannot grow memory forever.
const (
	limiterMaxEntries = 4096
	limiterIdleTTL    = 10 * time.Minute
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

var (
	limiterMu    sync.Mutex
	limiterStore = map[string]*limiterEntry{}
)

func getLimiter(key string, rps float64, burst int) *rate.Limiter {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	now := time.Now()
	if e, ok := limiterStore[key]; ok {
		e.lastSeen = now
		return e.lim
	}
	if len(limiterStore) >= limiterMaxEntries {
		for k, e := range limiterStore {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(limiterStore, k)
			}
		}
		// nothing idle to evict: start over rather than grow unbounded
		if len(limiterStore) >= limiterMaxEntries {
			limiterStore = map[string]*limiterEntry{}
		}
	}
	e := &limiterEntry{lim: rate.NewLimiter(rate.Limit(rps), burst), lastSeen: now}
	limiterStore[key] = e
	return e.lim
}

// RateLimitMiddleware enforces a token-bucket limit per key. The key is the
// authenticated subject when `claims` is present on the context, otherwise
// the client IP.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateKey(c, "")
		lim := getLimiter(key, rps, burst)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

// rateKey picks "sub:<subject>" for authenticated requests and "ip:<addr>"
// otherwise. prefix is prepended when non-empty (used by the Redis variant).
func rateKey(c *gin.Context, prefix string) string {
	if sub := SubjectFromContext(c); sub != "" {
		return prefix + "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return prefix + "ip:" + ip
}
