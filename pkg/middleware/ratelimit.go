package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/utafrali/techstore/pkg/httputil"
	"github.com/utafrali/techstore/pkg/logger"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per key. Entries idle for longer than
// ttl are evicted lazily, at most once per ttl.
type limiterStore struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	rps         float64
	burst       int
	ttl         time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func newLimiterStore(rps float64, burst int, ttl time.Duration) *limiterStore {
	return &limiterStore{
		visitors:    make(map[string]*visitor),
		rps:         rps,
		burst:       burst,
		ttl:         ttl,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastCleanup) > s.ttl {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > s.ttl {
				delete(s.visitors, k)
			}
		}
		s.lastCleanup = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (s *limiterStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// RateLimit enforces a token bucket per key and answers 429 when it is empty.
// A non-positive rps disables limiting.
func RateLimit(rps float64, burst int, key KeyFunc, l *slog.Logger) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return rateLimit(newLimiterStore(rps, burst, 3*time.Minute), key, l)
}

func rateLimit(store *limiterStore, key KeyFunc, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !store.allow(k) {
				logger.WithContext(r.Context(), l).Warn("rate limit exceeded",
					slog.String("key", k),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionOrIPKey counts requests per client-supplied X-Session-ID, falling
// back to the client IP when the header is absent. Session ids generated
// server-side for header-less requests are not used, so those requests share
// their IP's bucket.
func SessionOrIPKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionIDHeader)); id != "" {
		return "session:" + id
	}
	return "ip:" + ClientIP(r)
}

// ClientIP returns the first valid address from X-Forwarded-For, then
// X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
