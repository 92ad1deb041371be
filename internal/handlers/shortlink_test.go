package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/analytics"
	"github.com/mailmetrics/shortlink/internal/handlers"
	"github.com/mailmetrics/shortlink/internal/messaging"
	"github.com/mailmetrics/shortlink/internal/shortlink"
	"github.com/mailmetrics/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "https://example.com/a"

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ *T) error { return nil }
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ *T) error { return err }
}

func newTestHandler(t *testing.T, singleUse bool) (*handlers.ShortlinkHandler, *store.MemoryTier) {
	t.Helper()

	generate, err := shortlink.NewHexTokenGenerator(6)
	require.NoError(t, err)

	memory := store.NewMemoryTier()
	tiered := store.NewTieredStore([]shortlink.Tier{memory}, 0, zap.NewNop())

	service := shortlink.NewService(shortlink.ServiceConfig{
		Store:         tiered,
		Generate:      generate,
		DispatchClick: func(*analytics.ClickEvent) {},
		SingleUse:     singleUse,
		Logger:        zap.NewNop(),
	})

	return handlers.NewShortlinkHandler(service, zap.NewNop()), memory
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)

	return statusErr.GetStatus()
}

func TestCreateShortlink(t *testing.T) {
	t.Run("creates a shortlink", func(t *testing.T) {
		handler, _ := newTestHandler(t, false)

		req := &handlers.CreateShortlinkRequest{}
		req.Body.URL = testURL
		req.Body.NewsletterID = "n1"
		req.Body.RecipientID = "r1"

		resp, err := handler.CreateShortlink(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, resp.Body.OK)
		assert.Regexp(t, "^[0-9a-f]{12}$", resp.Body.Token)
		assert.Equal(t, "/s/"+resp.Body.Token, resp.Body.Path)
		assert.Nil(t, resp.Body.ExpiresAt)
	})

	t.Run("returns expiry when ttl is given", func(t *testing.T) {
		handler, _ := newTestHandler(t, false)
		ttl := 60

		req := &handlers.CreateShortlinkRequest{}
		req.Body.URL = testURL
		req.Body.TTLSeconds = &ttl

		resp, err := handler.CreateShortlink(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, resp.Body.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Minute), *resp.Body.ExpiresAt, time.Second)
	})

	t.Run("returns 400 for empty url", func(t *testing.T) {
		handler, _ := newTestHandler(t, false)

		req := &handlers.CreateShortlinkRequest{}

		resp, err := handler.CreateShortlink(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

func TestResolveShortlink(t *testing.T) {
	t.Run("redirects to the target url", func(t *testing.T) {
		handler, _ := newTestHandler(t, false)

		createReq := &handlers.CreateShortlinkRequest{}
		createReq.Body.URL = testURL

		created, err := handler.CreateShortlink(context.Background(), createReq)
		require.NoError(t, err)

		resp, err := handler.ResolveShortlink(context.Background(), &handlers.ResolveRequest{
			Token: created.Body.Token,
		})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, testURL, resp.Headers.Location)
	})

	t.Run("returns 404 for unknown token", func(t *testing.T) {
		handler, _ := newTestHandler(t, false)

		resp, err := handler.ResolveShortlink(context.Background(), &handlers.ResolveRequest{
			Token: "deadbeef0000",
		})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("returns 410 for an expired token", func(t *testing.T) {
		handler, memory := newTestHandler(t, false)

		past := time.Now().Add(-time.Second)
		require.NoError(t, memory.Put(context.Background(), &shortlink.Entry{
			Token:     "aaaabbbbcccc",
			URL:       testURL,
			CreatedAt: time.Now().Add(-time.Minute),
			ExpiresAt: &past,
		}, 0))

		resp, err := handler.ResolveShortlink(context.Background(), &handlers.ResolveRequest{
			Token: "aaaabbbbcccc",
		})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusGone, statusOf(t, err))
	})

	t.Run("returns 410 for a consumed token", func(t *testing.T) {
		handler, _ := newTestHandler(t, true)

		createReq := &handlers.CreateShortlinkRequest{}
		createReq.Body.URL = testURL

		created, err := handler.CreateShortlink(context.Background(), createReq)
		require.NoError(t, err)

		_, err = handler.ResolveShortlink(context.Background(), &handlers.ResolveRequest{
			Token: created.Body.Token,
		})
		require.NoError(t, err)

		resp, err := handler.ResolveShortlink(context.Background(), &handlers.ResolveRequest{
			Token: created.Body.Token,
		})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusGone, statusOf(t, err))
	})
}

func TestResolveShortlink_RelayIndependence(t *testing.T) {
	t.Run("redirect succeeds even when the relay publisher fails", func(t *testing.T) {
		generate, err := shortlink.NewHexTokenGenerator(6)
		require.NoError(t, err)

		memory := store.NewMemoryTier()
		tiered := store.NewTieredStore([]shortlink.Tier{memory}, 0, zap.NewNop())

		relay := analytics.NewRelay(
			errorPublish[analytics.ClickEvent](errors.New("sink unreachable")),
			zap.NewNop(),
		)

		service := shortlink.NewService(shortlink.ServiceConfig{
			Store:         tiered,
			Generate:      generate,
			DispatchClick: relay.Click,
			Logger:        zap.NewNop(),
		})

		handler := handlers.NewShortlinkHandler(service, zap.NewNop())

		createReq := &handlers.CreateShortlinkRequest{}
		createReq.Body.URL = testURL

		created, err := handler.CreateShortlink(context.Background(), createReq)
		require.NoError(t, err)

		resp, err := handler.ResolveShortlink(context.Background(), &handlers.ResolveRequest{
			Token: created.Body.Token,
		})

		require.NoError(t, err)
		assert.Equal(t, testURL, resp.Headers.Location)

		require.NoError(t, relay.Shutdown())
	})
}
