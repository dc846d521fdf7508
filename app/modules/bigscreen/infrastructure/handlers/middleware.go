package bigscreenhandlers

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// displayIdleAge is how long a display may stay silent before its bucket is dropped.
const displayIdleAge = 10 * time.Minute

type displayBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per display IP. Buckets idle for longer than
// displayIdleAge are swept at most once per displayIdleAge.
type IPRateLimiter struct {
	limit rate.Limit
	burst int
	clock clockwork.Clock

	mu        sync.Mutex
	buckets   map[string]*displayBucket
	lastSweep time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return newIPRateLimiter(limit, burst, clockwork.NewRealClock())
}

func newIPRateLimiter(limit rate.Limit, burst int, clock clockwork.Clock) *IPRateLimiter {
	return &IPRateLimiter{
		limit:     limit,
		burst:     burst,
		clock:     clock,
		buckets:   make(map[string]*displayBucket),
		lastSweep: clock.Now(),
	}
}

// Allow spends one token from ip's bucket.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.lastSweep) >= displayIdleAge {
		for key, bucket := range l.buckets {
			if now.Sub(bucket.lastSeen) >= displayIdleAge {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	bucket, ok := l.buckets[ip]
	if !ok {
		bucket = &displayBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// RetryAfter is the wait, in whole seconds, until a refused display earns a token.
func (l *IPRateLimiter) RetryAfter() int {
	if l.limit <= 0 || l.limit == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l.limit)-1e-9)))
}

// Size reports how many display buckets are tracked.
func (l *IPRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimitMiddleware answers 429 with a Retry-After hint once a display spends its budget.
func RateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.Allow(clientIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(limiter.RetryAfter()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "display is polling too fast"})
		})
	}
}

// CORSMiddleware lets the configured kiosk origins read the board and open the socket.
// Unlisted origins get no CORS headers.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := originSet(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			_, allowed := origins[origin]
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "600")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func originSet(allowed []string) map[string]struct{} {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return origins
}
