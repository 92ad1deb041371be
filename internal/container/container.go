package container

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options is the process configuration, populated from flags and environment.
type Options struct {
	Port                 int    `default:"8080"    help:"Port to listen on"                                                      short:"p"`
	RedisAddr            string `default:""        help:"Redis address; empty disables the volatile tier"                        short:"r"`
	PostgresDSN          string `default:""        help:"Postgres DSN; empty disables the durable tier"`
	MappingSecret        string `default:""        help:"HMAC secret authorizing identity-mapping writes; empty refuses them"`
	TokenBytes           int    `default:"6"       help:"Random bytes per token (tokens are twice as many hex characters)"`
	SingleUse            bool   `default:"false"   help:"Invalidate tokens after their first successful resolve"`
	DefaultTTLSeconds    int    `default:"0"       help:"Expiry applied when a create request has none; 0 keeps entries non-expiring"`
	SweepIntervalSeconds int    `default:"45"      help:"Interval between memory tier sweeps"`
	TierTimeoutMillis    int    `default:"2000"    help:"Per-tier storage call timeout"`
	LogFormat            string `default:"console" help:"Log format: console or json"`
}

// LoggerPackage provides the process logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client, or nil when no address is
// configured. Constructed once at startup and injected wherever needed.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return nil, nil
		}

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the shared connection pool, or nil when no DSN is
// configured.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		if options.PostgresDSN == "" {
			return nil, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return pgxpool.New(ctx, options.PostgresDSN)
	})
}
