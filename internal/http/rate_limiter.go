package httpapi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	seen   time.Time
}

// RateLimiter is a per-client token bucket holding up to limit tokens and
// refilling continuously at limit tokens per window. A bucket that has
// refilled completely is the same as no bucket, so idle clients are
// dropped by a sweep that runs at most once per window.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	buckets   map[string]*bucket
	now       func() time.Time
	nextSweep time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// perSecond is the refill rate in tokens per second.
func (r *RateLimiter) perSecond() float64 {
	return float64(r.limit) / r.window.Seconds()
}

func (r *RateLimiter) refill(b *bucket, now time.Time) {
	b.tokens = math.Min(float64(r.limit), b.tokens+now.Sub(b.seen).Seconds()*r.perSecond())
	b.seen = now
}

// Allow takes one token from client's bucket. When the bucket is empty it
// reports how long until the next token is available.
func (r *RateLimiter) Allow(client string) (bool, time.Duration) {
	if r.limit <= 0 || r.window <= 0 {
		return false, r.window
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	b, ok := r.buckets[client]
	if !ok {
		b = &bucket{tokens: float64(r.limit), seen: now}
		r.buckets[client] = b
	}
	r.refill(b, now)
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / r.perSecond() * float64(time.Second))
	return false, wait
}

func (r *RateLimiter) sweepLocked(now time.Time) {
	if now.Before(r.nextSweep) {
		return
	}
	for client, b := range r.buckets {
		r.refill(b, now)
		if b.tokens >= float64(r.limit) {
			delete(r.buckets, client)
		}
	}
	r.nextSweep = now.Add(r.window)
}

func (r *RateLimiter) clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

func clientIP(req *http.Request) string {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return ip
}

// RateLimitMiddleware answers 429 with a Retry-After in whole seconds once a
// client's bucket is empty.
func RateLimitMiddleware(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := limiter.Allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate_limit_exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
