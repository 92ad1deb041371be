package analytics

import (
	"sync"

	"github.com/mailmetrics/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// Relay dispatches click events to the analytics sink on a best-effort basis.
// Dispatch is detached from the caller: failures are logged and never
// propagated, and the caller does not wait for the outcome.
type Relay struct {
	publish messaging.Publish[ClickEvent]
	logger  *zap.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewRelay creates a click event relay.
func NewRelay(publish messaging.Publish[ClickEvent], logger *zap.Logger) *Relay {
	return &Relay{
		publish: publish,
		logger:  logger,
	}
}

// Click dispatches the event asynchronously and returns immediately. Events
// arriving after Shutdown are dropped.
func (r *Relay) Click(event *ClickEvent) {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("click event dropped after shutdown",
			zap.String("newsletterId", event.NewsletterID),
			zap.String("url", event.URL),
		)

		return
	}

	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		if err := r.publish(event); err != nil {
			r.logger.Error("failed to relay click event",
				zap.String("newsletterId", event.NewsletterID),
				zap.String("url", event.URL),
				zap.Error(err),
			)
		}
	}()
}

// Shutdown stops accepting new events and waits for in-flight dispatches to
// finish.
func (r *Relay) Shutdown() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.wg.Wait()

	return nil
}
