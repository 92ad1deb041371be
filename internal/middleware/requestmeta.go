package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/handlers"
)

// RequestMeta captures the client IP, user agent, and referrer into the
// request context. The user agent ends up on relayed click and track events,
// so it has to be extracted before the handlers run.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  extractClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

// extractClientIP resolves the original client address. Shortlink traffic
// arrives through the newsletter CDN, so forwarding headers take precedence
// over the connection peer.
func extractClientIP(ctx huma.Context) string {
	// First entry of X-Forwarded-For is the original client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.Host()
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}

	return host
}
