package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/analytics"
	"github.com/mailmetrics/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// TrackHandler ingests raw analytics events and passes them to the sink.
type TrackHandler struct {
	publish messaging.Publish[analytics.TrackEvent]
	logger  *zap.Logger
}

// NewTrackHandler creates a new track handler.
func NewTrackHandler(publish messaging.Publish[analytics.TrackEvent], logger *zap.Logger) *TrackHandler {
	return &TrackHandler{
		publish: publish,
		logger:  logger,
	}
}

func (h *TrackHandler) Track(ctx context.Context, req *TrackRequest) (*struct{}, error) {
	if req.Body.EventType == "" || req.Body.NewsletterID == "" {
		return nil, huma.Error400BadRequest("eventType and newsletterId are required")
	}

	meta := RequestMetaFromContext(ctx)

	event := &analytics.TrackEvent{
		Timestamp:     time.Now().UTC(),
		EventType:     req.Body.EventType,
		NewsletterID:  req.Body.NewsletterID,
		RecipientHash: req.Body.RecipientHash,
		URL:           req.Body.URL,
		DurationSec:   req.Body.DurationSec,
		UserAgent:     meta.UserAgent,
	}

	if err := h.publish(event); err != nil {
		h.logger.Error("failed to publish track event",
			zap.String("eventType", event.EventType),
			zap.String("newsletterId", event.NewsletterID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to record event")
	}

	return nil, nil
}
