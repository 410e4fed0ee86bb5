package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"practice-scheduler/pkg/response"
)

const (
	// IdleTTL is how long a client IP keeps its bucket without requests.
	IdleTTL         = 10 * time.Minute
	cleanupInterval = time.Minute
)

// IPRateLimiter stores a token bucket per client IP. Buckets of IPs idle
// for longer than the TTL are evicted.
type IPRateLimiter struct {
	ips *cache.Cache
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int, idleTTL time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips: cache.New(idleTTL, cleanupInterval),
		r:   r,
		b:   b,
	}
}

// GetLimiter returns the limiter for ip, creating it on first use. Every
// call restarts the idle TTL.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	if v, ok := i.ips.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		i.ips.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(i.r, i.b)
	if err := i.ips.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if v, ok := i.ips.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}

	return limiter
}

// Len is the number of tracked IPs, expired ones included until cleanup.
func (i *IPRateLimiter) Len() int {
	return i.ips.ItemCount()
}

// New answers 429 once a client IP exceeds rps requests per second with the
// given burst. Put it after middleware.RealIP to key on forwarded addresses.
func New(log *slog.Logger, rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewIPRateLimiter(rate.Limit(rps), burst, IdleTTL)

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !limiter.GetLimiter(ip).Allow() {
				log.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(string(response.RATE_LIMITED), "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
