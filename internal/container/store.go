package container

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mailmetrics/shortlink/internal/analytics"
	"github.com/mailmetrics/shortlink/internal/shortlink"
	"github.com/mailmetrics/shortlink/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// StorePackage provides the storage tiers, the tiered orchestrator, and the
// memory tier sweeper. Tier order is fixed: volatile, durable, memory.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*store.MemoryTier, error) {
		return store.NewMemoryTier(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*store.Sweeper, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		memory := do.MustInvoke[*store.MemoryTier](i)

		interval := time.Duration(options.SweepIntervalSeconds) * time.Second

		return store.NewSweeper(memory, interval, logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (*store.TieredStore, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var tiers []shortlink.Tier

		if client := do.MustInvoke[*redis.Client](i); client != nil {
			tiers = append(tiers, store.NewRedisTier(client))
		}

		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			tier := store.NewPostgresTier(pool)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := tier.EnsureSchema(ctx); err != nil {
				return nil, err
			}

			tiers = append(tiers, tier)
		}

		tiers = append(tiers, do.MustInvoke[*store.MemoryTier](i))

		timeout := time.Duration(options.TierTimeoutMillis) * time.Millisecond

		return store.NewTieredStore(tiers, timeout, logger), nil
	})
}

// ShortlinkPackage provides the shortlink service.
func ShortlinkPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortlink.Service, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		generate, err := shortlink.NewHexTokenGenerator(options.TokenBytes)
		if err != nil {
			return nil, err
		}

		relay := do.MustInvoke[*analytics.Relay](i)

		return shortlink.NewService(shortlink.ServiceConfig{
			Store:         do.MustInvoke[*store.TieredStore](i),
			Generate:      generate,
			DispatchClick: relay.Click,
			SingleUse:     options.SingleUse,
			DefaultTTL:    time.Duration(options.DefaultTTLSeconds) * time.Second,
			Logger:        logger,
		}), nil
	})
}
