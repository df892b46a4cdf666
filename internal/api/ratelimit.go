package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/httprate"

	"github.com/shelfsocial/shelfsocial-server/internal/http/response"
	"github.com/shelfsocial/shelfsocial-server/internal/ratelimit"
)

// RateLimiter is the per-IP limiter guarding the auth endpoints.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a limiter allowing ratePerInterval requests per
// interval per IP, with the given burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst, ratelimit.DefaultIdleTTL)
}

// globalRateLimit throttles every request per client IP. A non-positive
// limit disables it.
func (s *Server) globalRateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Warn("rate limit exceeded", "ip", clientIP(r.RemoteAddr), "path", r.URL.Path)
			response.TooManyRequests(w, "too many requests, try again later", s.logger)
		}),
	)
}

// authRateLimit is a huma operation middleware limiting credential attempts
// per client IP.
func (s *Server) authRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.authRateLimiter == nil {
		next(ctx)
		return
	}

	ip := clientIP(ctx.RemoteAddr())
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("auth rate limit exceeded", "ip", ip, "path", ctx.URL().Path)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	next(ctx)
}
