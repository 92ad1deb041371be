package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mailmetrics/shortlink/internal/analytics"
	"github.com/mailmetrics/shortlink/internal/handlers"
	"github.com/mailmetrics/shortlink/internal/health"
	"github.com/mailmetrics/shortlink/internal/messaging"
	"github.com/mailmetrics/shortlink/internal/middleware"
	"github.com/mailmetrics/shortlink/internal/ratelimit"
	"github.com/mailmetrics/shortlink/internal/shortlink"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// RateLimitPackage provides the rate limit store.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (ratelimit.Store, error) {
		return ratelimit.NewMemoryStore(), nil
	})
}

// HTTPPackage provides the router and the API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Shortlink Service", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.RateLimiter(api, do.MustInvoke[ratelimit.Store](i), logger))

		shortlinks := handlers.NewShortlinkHandler(do.MustInvoke[*shortlink.Service](i), logger)
		track := handlers.NewTrackHandler(do.MustInvoke[messaging.Publish[analytics.TrackEvent]](i), logger)
		mapping := handlers.NewMapHandler(options.MappingSecret,
			do.MustInvoke[messaging.Publish[analytics.RecipientMapping]](i), logger)

		handlers.RegisterRoutes(api, shortlinks, track, mapping)

		var redisChecker, postgresChecker health.Checker

		if client := do.MustInvoke[*redis.Client](i); client != nil {
			redisChecker = health.NewRedisChecker(client)
		}

		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			postgresChecker = health.NewPostgresChecker(pool)
		}

		health.RegisterRoutes(api, health.NewHandler(redisChecker, postgresChecker))

		return api, nil
	})
}
