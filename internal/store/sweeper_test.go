package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/mailmetrics/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweeper(t *testing.T) {
	t.Run("reclaims consumed entries in the background", func(t *testing.T) {
		tier := store.NewMemoryTier()
		entry := newEntry("aaaabbbbcccc")
		entry.Consumed = true
		require.NoError(t, tier.Put(context.Background(), entry, 0))

		sweeper := store.NewSweeper(tier, 10*time.Millisecond, zap.NewNop())
		require.NoError(t, sweeper.Start(context.Background()))

		defer func() { _ = sweeper.Shutdown() }()

		assert.Eventually(t, func() bool {
			return tier.Len() == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("shutdown stops the loop", func(t *testing.T) {
		sweeper := store.NewSweeper(store.NewMemoryTier(), time.Millisecond, zap.NewNop())
		require.NoError(t, sweeper.Start(context.Background()))

		assert.NoError(t, sweeper.Shutdown())
	})

	t.Run("shutdown before start is a no-op", func(t *testing.T) {
		sweeper := store.NewSweeper(store.NewMemoryTier(), time.Millisecond, zap.NewNop())

		assert.NoError(t, sweeper.Shutdown())
	})
}
