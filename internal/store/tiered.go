package store

import (
	"context"
	"errors"
	"time"

	"github.com/mailmetrics/shortlink/internal/shortlink"
	"go.uber.org/zap"
)

// TieredStore orchestrates reads and writes across an ordered list of tiers.
// A write lands in exactly one tier: the first that accepts it. Reads probe
// tiers in the same order and stop at the first hit. A tier failing is not an
// error to the caller until every tier has failed.
type TieredStore struct {
	tiers   []shortlink.Tier
	timeout time.Duration
	logger  *zap.Logger
}

// NewTieredStore creates a tiered store. The timeout bounds each individual
// tier call so a hung remote never stalls the request; zero disables it.
func NewTieredStore(tiers []shortlink.Tier, timeout time.Duration, logger *zap.Logger) *TieredStore {
	return &TieredStore{
		tiers:   tiers,
		timeout: timeout,
		logger:  logger,
	}
}

// Put writes the entry to the first tier that accepts it. Returns
// ErrStorageUnavailable only when every tier rejected the write.
func (s *TieredStore) Put(ctx context.Context, entry *shortlink.Entry, ttl time.Duration) error {
	for _, tier := range s.tiers {
		err := s.withTimeout(ctx, func(ctx context.Context) error {
			return tier.Put(ctx, entry, ttl)
		})
		if err != nil {
			s.logger.Warn("tier rejected write, falling through",
				zap.String("tier", tier.Name()),
				zap.String("token", entry.Token),
				zap.Error(err),
			)

			continue
		}

		s.logger.Debug("entry stored",
			zap.String("tier", tier.Name()),
			zap.String("token", entry.Token),
		)

		return nil
	}

	return shortlink.ErrStorageUnavailable
}

// Get probes tiers in order and returns the first present, non-expired entry
// together with its owning tier. An expired entry is purged from its tier and
// reported as ErrExpired. ErrNotFound means no tier holds the token.
func (s *TieredStore) Get(ctx context.Context, token string) (*shortlink.Entry, shortlink.Tier, error) {
	for _, tier := range s.tiers {
		var entry *shortlink.Entry

		err := s.withTimeout(ctx, func(ctx context.Context) error {
			var err error
			entry, err = tier.Get(ctx, token)

			return err
		})
		if err != nil {
			if !errors.Is(err, shortlink.ErrNotFound) {
				s.logger.Warn("tier read failed, falling through",
					zap.String("tier", tier.Name()),
					zap.String("token", token),
					zap.Error(err),
				)
			}

			continue
		}

		if entry.Expired(time.Now()) {
			// Purge is best effort; the durable tier keeps no background
			// deletion of its own.
			if err := tier.Delete(ctx, token); err != nil {
				s.logger.Warn("failed to purge expired entry",
					zap.String("tier", tier.Name()),
					zap.String("token", token),
					zap.Error(err),
				)
			}

			return nil, nil, shortlink.ErrExpired
		}

		return entry, tier, nil
	}

	return nil, nil, shortlink.ErrNotFound
}

func (s *TieredStore) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return fn(ctx)
}

// Compile-time check.
var _ shortlink.TierStore = (*TieredStore)(nil)
