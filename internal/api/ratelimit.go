package api

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
)

// signinRateLimit is a huma operation middleware that limits signin attempts per client IP.
// Returns 429 with a Retry-After header when the limit is exceeded.
func (s *Server) signinRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.signinLimiter == nil {
		next(ctx)
		return
	}

	key := getClientIP(ctx)
	ok, retryAfter := s.signinLimiter.Reserve(key)
	if ok {
		next(ctx)
		return
	}

	seconds := max(int(math.Ceil(retryAfter.Seconds())), 1)
	msg := fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds)

	s.logger.Warn("signin rate limit exceeded",
		"ip", key,
		"retry_after", seconds,
		"request_id", RequestIDFromContext(ctx.Context()),
	)

	ctx.SetHeader("Retry-After", strconv.Itoa(seconds))
	_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, msg, domainerrors.RateLimited(msg))
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers only
// count when the server trusts them, in which case RealIP has already
// rewritten RemoteAddr.
func getClientIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
