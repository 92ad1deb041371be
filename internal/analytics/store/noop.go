package store

import (
	"context"

	"github.com/mailmetrics/shortlink/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events. Used when no sink
// database is configured.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveClick(_ context.Context, event *analytics.ClickEvent) error {
	n.logger.Info("click event received",
		zap.String("newsletterId", event.NewsletterID),
		zap.String("recipientId", event.RecipientID),
		zap.String("url", event.URL),
		zap.Time("timestamp", event.Timestamp),
	)

	return nil
}

func (n *Noop) SaveTrack(_ context.Context, event *analytics.TrackEvent) error {
	n.logger.Info("track event received",
		zap.String("eventType", event.EventType),
		zap.String("newsletterId", event.NewsletterID),
		zap.Time("timestamp", event.Timestamp),
	)

	return nil
}

func (n *Noop) SaveRecipientMapping(_ context.Context, mapping *analytics.RecipientMapping) error {
	n.logger.Info("recipient mapping received",
		zap.String("recipientHash", mapping.RecipientHash),
		zap.String("newsletterId", mapping.NewsletterID),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
