package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware applying the per-endpoint limits
// declared in operation metadata. Endpoints without limits pass through.
func RateLimiter(api huma.API, store ratelimit.Store, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg == nil || cfg.Disabled || len(cfg.Limits) == 0 {
			next(ctx)

			return
		}

		op := ctx.Operation()
		clientK := clientKey(ctx)

		for _, limit := range cfg.Limits {
			// Counters are shared per client and route template, so all
			// requests matching the same route share a window.
			key := fmt.Sprintf("%s:%s:%d", clientK, op.Path, limit.Window.Milliseconds())

			count, err := store.Record(ctx.Context(), key, limit.Window)
			if err != nil {
				logger.Error("rate limit check failed",
					zap.String("path", op.Path),
					zap.Error(err),
				)
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

				return
			}

			if count > limit.Max {
				logger.Warn("rate limit exceeded",
					zap.String("path", op.Path),
					zap.String("method", ctx.Method()),
					zap.Int64("count", count),
					zap.Int64("max", limit.Max),
					zap.Duration("window", limit.Window),
				)
				_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests,
					fmt.Sprintf("rate limit exceeded: %d/%d requests in %s", count, limit.Max, limit.Window))

				return
			}
		}

		next(ctx)
	}
}

// clientKey generates a unique key for rate limiting based on IP and User-Agent.
func clientKey(ctx huma.Context) string {
	ip := extractClientIP(ctx)
	ua := ctx.Header("User-Agent")

	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}
