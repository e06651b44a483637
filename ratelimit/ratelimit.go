package ratelimit

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var rejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "confessly_rate_limited_total",
	Help: "Write requests rejected by the per-device rate limiter.",
})

// Limiter is a fixed-window counter per key. A nil Redis client disables it.
type Limiter struct {
	r      *redis.Client
	limit  int64
	window time.Duration
}

func New(r *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{r: r, limit: limit, window: window}
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	if l == nil || l.r == nil || l.limit <= 0 {
		return true, 0, nil
	}

	// NX keeps the window fixed while still giving a TTL to keys left
	// without one.
	k := "rl:" + key
	pipe := l.r.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= l.limit, n, nil
}

// LimitHTTP rejects requests over the limit with 429. Requests without a key
// pass through so handlers can report the missing device id themselves;
// limiter errors are logged and the request is allowed.
func (l *Limiter) LimitHTTP(keyFn func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFn(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		ok, n, err := l.Allow(r.Context(), key)
		if err != nil {
			log.Printf("[RateLimit] limiter error for %s: %v", key, err)
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			rejected.Inc()
			log.Printf("[RateLimit] %s over limit (count=%d, limit=%d)", key, n, l.limit)
			w.Header().Set("Retry-After", retryAfter(l.window))
			http.Error(w, "Too many requests, slow down", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfter(window time.Duration) string {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
