package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically reclaims expired and consumed entries from the memory
// tier, the only tier without native expiry enforcement.
type Sweeper struct {
	tier     *MemoryTier
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper over the given memory tier.
func NewSweeper(tier *MemoryTier, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		tier:     tier,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.run(ctx)

	return nil
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.tier.Sweep(now); removed > 0 {
				s.logger.Debug("swept memory tier",
					zap.Int("removed", removed),
					zap.Int("remaining", s.tier.Len()),
				)
			}
		}
	}
}

// Shutdown stops the sweep loop and waits for it to exit.
func (s *Sweeper) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	return nil
}
