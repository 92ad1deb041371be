package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mailmetrics/shortlink/internal/shortlink"
	"github.com/mailmetrics/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(token string) *shortlink.Entry {
	return &shortlink.Entry{
		Token:     token,
		URL:       "https://example.com/a",
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryTier_PutGet(t *testing.T) {
	t.Run("returns the stored entry", func(t *testing.T) {
		tier := store.NewMemoryTier()
		entry := newEntry("aaaabbbbcccc")
		entry.NewsletterID = "n1"
		entry.RecipientID = "r1"

		require.NoError(t, tier.Put(context.Background(), entry, 0))

		got, err := tier.Get(context.Background(), "aaaabbbbcccc")

		require.NoError(t, err)
		assert.Equal(t, entry.URL, got.URL)
		assert.Equal(t, "n1", got.NewsletterID)
		assert.Equal(t, "r1", got.RecipientID)
	})

	t.Run("returns ErrNotFound for unknown token", func(t *testing.T) {
		tier := store.NewMemoryTier()

		got, err := tier.Get(context.Background(), "missing")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})

	t.Run("returned entry is a copy", func(t *testing.T) {
		tier := store.NewMemoryTier()
		require.NoError(t, tier.Put(context.Background(), newEntry("aaaabbbbcccc"), 0))

		got, err := tier.Get(context.Background(), "aaaabbbbcccc")
		require.NoError(t, err)

		got.Consumed = true

		again, err := tier.Get(context.Background(), "aaaabbbbcccc")
		require.NoError(t, err)
		assert.False(t, again.Consumed)
	})
}

func TestMemoryTier_MarkConsumed(t *testing.T) {
	t.Run("first caller wins, second gets ErrGone", func(t *testing.T) {
		tier := store.NewMemoryTier()
		require.NoError(t, tier.Put(context.Background(), newEntry("aaaabbbbcccc"), 0))

		require.NoError(t, tier.MarkConsumed(context.Background(), "aaaabbbbcccc"))
		assert.ErrorIs(t, tier.MarkConsumed(context.Background(), "aaaabbbbcccc"), shortlink.ErrGone)
	})

	t.Run("returns ErrNotFound for unknown token", func(t *testing.T) {
		tier := store.NewMemoryTier()

		assert.ErrorIs(t, tier.MarkConsumed(context.Background(), "missing"), shortlink.ErrNotFound)
	})

	t.Run("exactly one concurrent caller observes the transition", func(t *testing.T) {
		tier := store.NewMemoryTier()
		require.NoError(t, tier.Put(context.Background(), newEntry("aaaabbbbcccc"), 0))

		const callers = 16

		errs := make(chan error, callers)

		var wg sync.WaitGroup

		for range callers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				errs <- tier.MarkConsumed(context.Background(), "aaaabbbbcccc")
			}()
		}

		wg.Wait()
		close(errs)

		won := 0

		for err := range errs {
			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, shortlink.ErrGone)
			}
		}

		assert.Equal(t, 1, won)
	})
}

func TestMemoryTier_Delete(t *testing.T) {
	t.Run("removes the entry", func(t *testing.T) {
		tier := store.NewMemoryTier()
		require.NoError(t, tier.Put(context.Background(), newEntry("aaaabbbbcccc"), 0))

		require.NoError(t, tier.Delete(context.Background(), "aaaabbbbcccc"))

		_, err := tier.Get(context.Background(), "aaaabbbbcccc")
		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})

	t.Run("deleting an absent token is not an error", func(t *testing.T) {
		tier := store.NewMemoryTier()

		assert.NoError(t, tier.Delete(context.Background(), "missing"))
	})
}

func TestMemoryTier_Sweep(t *testing.T) {
	t.Run("removes expired and consumed entries, keeps live ones", func(t *testing.T) {
		tier := store.NewMemoryTier()
		now := time.Now().UTC()

		expired := newEntry("expired00000")
		past := now.Add(-time.Minute)
		expired.ExpiresAt = &past

		consumed := newEntry("consumed0000")
		consumed.Consumed = true

		live := newEntry("live00000000")
		future := now.Add(time.Hour)
		live.ExpiresAt = &future

		for _, entry := range []*shortlink.Entry{expired, consumed, live} {
			require.NoError(t, tier.Put(context.Background(), entry, 0))
		}

		removed := tier.Sweep(now)

		assert.Equal(t, 2, removed)
		assert.Equal(t, 1, tier.Len())

		_, err := tier.Get(context.Background(), "live00000000")
		assert.NoError(t, err)
	})

	t.Run("empty tier sweeps cleanly", func(t *testing.T) {
		tier := store.NewMemoryTier()

		assert.Equal(t, 0, tier.Sweep(time.Now()))
	})
}
