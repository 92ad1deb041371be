package analytics_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mailmetrics/shortlink/internal/analytics"
	"github.com/mailmetrics/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRelay_Click(t *testing.T) {
	t.Run("dispatches the event asynchronously", func(t *testing.T) {
		var (
			mu     sync.Mutex
			events []*analytics.ClickEvent
		)

		publish := messaging.Publish[analytics.ClickEvent](func(event *analytics.ClickEvent) error {
			mu.Lock()
			defer mu.Unlock()

			events = append(events, event)

			return nil
		})

		relay := analytics.NewRelay(publish, zap.NewNop())

		relay.Click(&analytics.ClickEvent{
			Timestamp:    time.Now(),
			Source:       analytics.SourceShortlink,
			EventType:    analytics.EventTypeClick,
			NewsletterID: "n1",
			URL:          "https://example.com/a",
		})

		require.NoError(t, relay.Shutdown())

		mu.Lock()
		defer mu.Unlock()

		require.Len(t, events, 1)
		assert.Equal(t, "n1", events[0].NewsletterID)
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		publish := messaging.Publish[analytics.ClickEvent](func(*analytics.ClickEvent) error {
			return errors.New("sink unreachable")
		})

		relay := analytics.NewRelay(publish, zap.NewNop())

		relay.Click(&analytics.ClickEvent{URL: "https://example.com/a"})

		assert.NoError(t, relay.Shutdown())
	})

	t.Run("drops events arriving after shutdown", func(t *testing.T) {
		var (
			mu     sync.Mutex
			events []*analytics.ClickEvent
		)

		publish := messaging.Publish[analytics.ClickEvent](func(event *analytics.ClickEvent) error {
			mu.Lock()
			defer mu.Unlock()

			events = append(events, event)

			return nil
		})

		relay := analytics.NewRelay(publish, zap.NewNop())
		require.NoError(t, relay.Shutdown())

		relay.Click(&analytics.ClickEvent{URL: "https://example.com/a"})

		mu.Lock()
		defer mu.Unlock()
		assert.Empty(t, events)
	})

	t.Run("shutdown waits for in-flight dispatches", func(t *testing.T) {
		done := make(chan struct{})

		publish := messaging.Publish[analytics.ClickEvent](func(*analytics.ClickEvent) error {
			<-done

			return nil
		})

		relay := analytics.NewRelay(publish, zap.NewNop())
		relay.Click(&analytics.ClickEvent{})

		finished := make(chan struct{})

		go func() {
			_ = relay.Shutdown()
			close(finished)
		}()

		select {
		case <-finished:
			t.Fatal("shutdown returned before dispatch completed")
		case <-time.After(20 * time.Millisecond):
		}

		close(done)

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("shutdown did not return after dispatch completed")
		}
	})
}
